// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the deepreasoning client.
//
// This package contains common helper functions used throughout the
// application for string manipulation, type conversion, and file
// operations.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunesNoEllipsis: UTF-8 safe string truncation
//   - TruncateWidth: display-width aware truncation with ellipsis (CJK safe)
//   - PadRight, SingleLine: column padding and newline collapsing
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
package util
