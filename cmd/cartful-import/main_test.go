// Cartful - Grocery Order Analytics Dashboard
// Copyright 2026 Cartful Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartful-labs/cartful

package main

import (
	"encoding/csv"
	"strings"
	"testing"
)

func TestCSVSource_StreamsAndConverts(t *testing.T) {
	in := csv.NewReader(strings.NewReader(
		"1,10,prior,4,2,9,8.0\n" +
			"2,10,prior,5,3,14,\n"))
	src := &csvSource{
		reader:  in,
		convert: []converter{asInt, asInt, asText, asInt, asInt, asInt, asFloat},
	}

	if !src.Next() {
		t.Fatalf("first row: %v", src.Err())
	}
	values, _ := src.Values()
	if values[0] != int64(1) || values[2] != "prior" || values[6] != 8.0 {
		t.Errorf("row 1 = %v", values)
	}

	if !src.Next() {
		t.Fatalf("second row: %v", src.Err())
	}
	values, _ = src.Values()
	// Empty days_since_prior_order becomes NULL.
	if values[6] != nil {
		t.Errorf("expected nil for empty field, got %v", values[6])
	}

	if src.Next() {
		t.Error("expected EOF")
	}
	if src.Err() != nil {
		t.Errorf("err = %v", src.Err())
	}
}

func TestCSVSource_FieldCountMismatch(t *testing.T) {
	in := csv.NewReader(strings.NewReader("1,2\n"))
	in.FieldsPerRecord = -1
	src := &csvSource{reader: in, convert: []converter{asInt, asInt, asInt}}

	if src.Next() {
		t.Fatal("expected failure on short row")
	}
	if src.Err() == nil {
		t.Error("expected error")
	}
}

func TestCSVSource_BadNumber(t *testing.T) {
	in := csv.NewReader(strings.NewReader("banana\n"))
	src := &csvSource{reader: in, convert: []converter{asInt}}

	if src.Next() {
		t.Fatal("expected parse failure")
	}
	if src.Err() == nil {
		t.Error("expected error")
	}
}

func TestTableSpecsAreConsistent(t *testing.T) {
	for _, spec := range tables {
		if len(spec.columns) != len(spec.convert) {
			t.Errorf("%s: %d columns but %d converters", spec.name, len(spec.columns), len(spec.convert))
		}
	}
}
