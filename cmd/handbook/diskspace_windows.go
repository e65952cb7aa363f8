// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Handbook Contributors

package main

func checkDiskSpace(string) string {
	return "not checked on windows"
}
