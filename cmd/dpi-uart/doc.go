// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// dpi-uart is the UART terminal bridge packaged as a shared library for
// hardware simulators. It exports the C functions a SystemVerilog DPI
// UART model imports:
//
//	import "DPI-C" function void uart_init();
//	import "DPI-C" function int  uart_tx_is_data_available();
//	import "DPI-C" function int  uart_tx_get_data();
//	import "DPI-C" function void uart_rx_new_data(input byte chr);
//	import "DPI-C" function void uart_close();
//
// Build with:
//
//	go build -buildmode=c-shared -o libdpi_uart.so ./cmd/dpi-uart
//
// and link the library into the simulator (for Verilator, add it to the
// LDFLAGS of the generated makefile).
//
// The "tx" and "rx" names follow the hardware model's point of view:
// uart_tx_is_data_available and uart_tx_get_data feed bytes typed on
// the host into the model, uart_rx_new_data takes bytes the model sends
// out and writes them to the host.
//
// uart_init takes no arguments, so configuration comes from the file
// named by DPI_UART_CONFIG when it is set and from defaults otherwise
// (cbreak terminal, stdin/stdout, no trace). Logs go to stderr.
//
// None of the exported functions ever aborts the simulation. Poll
// faults, write faults, and configuration failures are logged (once per
// streak) and the call reports "no data" or drops the byte.
//
// Call uart_close from a final block to restore the terminal. If the
// simulator is killed by SIGINT, SIGTERM, or SIGHUP while the terminal
// is reconfigured, the library restores it and re-raises the signal so
// the simulator's own handling still runs.
package main
