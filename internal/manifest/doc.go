// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package manifest loads action type schemas from HCL manifest files.
//
// A manifest file holds one or more `action "<Kind>" "<type>"` blocks. Each
// block describes the `spec` keys of the type as (possibly nested) `field`
// blocks and its type-specific outputs as `output` blocks:
//
//	action "Run" "container" {
//	  description = "Run a command in a container."
//
//	  field "image" {
//	    type        = string
//	    description = "The image to run."
//	    required    = true
//	  }
//
//	  output "log" {
//	    type = string
//	  }
//	}
//
// Manifests are parsed with the same rigor as user configuration: all
// problems across all files are reported together as hcl.Diagnostics.
package manifest
