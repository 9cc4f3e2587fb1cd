// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command lintgate runs a project's linters after an editing tool changes a
// file and reports failures back to the tool.
//
// Usage:
//
//	lintgate hook              read one edit event from stdin (exit 2 on lint failure)
//	lintgate check FILE        lint as if FILE had just been edited
//	lintgate probe             show whether the lint environment is ready
//	lintgate serve [--watch]   accept edit events over HTTP
//	lintgate watch [DIR]       lint files as they change on disk
//	lintgate version
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
