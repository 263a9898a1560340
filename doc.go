// SPDX-FileCopyrightText: © 2024 Donald Hoelle. All rights reserved.
// SPDX-License-Identifier: MIT
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package [shapeshift] lets a Go value be encoded in a shape other than its
// default one, independently of the wire format.
//
// Wire formats implement [Serializer] and [Deserializer] (see the jsonfmt,
// yamlfmt and cborfmt sub-packages). Values implement [Serializable] and
// [Deserializable], or are handled by reflection through [Native].
//
// # Adapters
//
// An adapter is a zero-size type implementing [SerializeAs] and/or
// [DeserializeAs] for some T. It is selected through a type parameter:
//
//	n := 42
//	b, _ := jsonfmt.Marshal(shapeshift.SerializeWith[shapeshift.DisplayFromStr[int]](&n))
//	// b == []byte(`"42"`)
//
// Adapters compose. [Option], [SliceOf] and [ArrayOf] lift an element
// adapter to pointers, slices and fixed-size arrays:
//
//	type Ports = shapeshift.SliceOf[int, shapeshift.DisplayFromStr[int]]
//	// []int{80, 443} <-> ["80", "443"]
//
// # Enum maps
//
// [EnumMap] encodes a list of enum values as a map from variant name to
// payload, and decodes it back in order:
//
//	[Unit, Tuple(1, "Middle", false), Struct{a: 666, b: "BBB", c: true}]
//
// is written as
//
//	{
//	  "Unit": null,
//	  "Tuple": [1, "Middle", false],
//	  "Struct": {"a": 666, "b": "BBB", "c": true}
//	}
//
// Repeated variant names produce repeated keys. Whether those are accepted
// is decided by the wire format; jsonfmt rejects them unless
// AllowDuplicateNames is set.
//
// # Captured values
//
// [Content] records one value of any shape so that it can be inspected or
// replayed later, into a [Serializer] or into any [Visitor]. [Capture] reads
// it from a [Deserializer] and [ToContent] from a [Serializable].
//
// # Flattened fields
//
// [FlattenedMaybe] accepts a field either nested under its own key or
// flattened into its parent map, and rejects inputs holding both.
//
// # Tagged representation
//
// [TagConfig], [Tagged] and [TaggedInline] write enum values as a map
// holding the variant name under a discriminator key:
//
//	{"_type": "Point", "_value": {"x": 1, "y": 2}}
//	{"_type": "Point", "x": 1, "y": 2} // InlineObjects
//
// # Logging
//
// The package logs through go.uber.org/zap. It is silent until [SetLogger]
// is called.
package shapeshift
