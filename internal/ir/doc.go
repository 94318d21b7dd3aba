// Package ir provides the property value model shared by the pushdown layer,
// the reference backend and the pipeline host.
//
// This package contains value definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - use int64 for numbers
//   - IRNull is an explicit value so missing and null properties stay distinct
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for fingerprints
package ir
