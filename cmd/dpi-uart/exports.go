// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import "C"

//export uart_init
func uart_init() {
	initialize()
}

//export uart_tx_is_data_available
func uart_tx_is_data_available() C.int {
	if pollInput() {
		return 1
	}
	return 0
}

//export uart_tx_get_data
func uart_tx_get_data() C.int {
	return C.int(stagedInput())
}

//export uart_rx_new_data
func uart_rx_new_data(chr C.char) {
	deliverOutput(byte(chr))
}

//export uart_close
func uart_close() {
	shutdown()
}

// uartAtExit runs from the C library's exit handlers.
//
//export uartAtExit
func uartAtExit() {
	shutdown()
}

func main() {}
