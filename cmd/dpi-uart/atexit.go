// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

/*
#include <stdlib.h>

extern void uartAtExit(void);

static int uart_register_atexit(void) {
	return atexit(uartAtExit);
}
*/
import "C"

// registerExitHook arranges for shutdown to run when the simulator
// calls exit(3), so the terminal is restored and the trace finished
// even if the testbench never imports uart_close.
var registerExitHook = func() {
	if C.uart_register_atexit() != 0 {
		logger.Warn("registering uart exit hook failed; call uart_close to finish the trace")
	}
}
