// Copyright 2020 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package annotate_test

import (
	"testing"

	"github.com/grailbio/bio-annotate/annotate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constAnnotation struct {
	key, value string
}

func (a constAnnotation) KeyNames() []string { return []string{a.key} }

func (a constAnnotation) HeaderLines() []annotate.HeaderLine {
	return []annotate.HeaderLine{{ID: a.key, Number: "1", Type: annotate.String, Description: "test"}}
}

func (a constAnnotation) Annotate(*annotate.Site) (annotate.Result, error) {
	return annotate.Result{a.key: a.value}, nil
}

func TestRegistry(t *testing.T) {
	r := annotate.NewRegistry()
	assert.Empty(t, r.Names())
	r.Register("Zed", constAnnotation{"Zed", "z"})
	r.Register("Alpha", constAnnotation{"Alpha", "a"})
	assert.Equal(t, []string{"Alpha", "Zed"}, r.Names())

	a, ok := r.Lookup("Zed")
	require.True(t, ok)
	assert.Equal(t, []string{"Zed"}, a.KeyNames())
	_, ok = r.Lookup("zed")
	assert.False(t, ok)

	assert.Panics(t, func() { r.Register("Alpha", constAnnotation{"Alpha", "b"}) })

	resolved, err := r.Resolve([]string{"Zed", "Alpha"})
	require.NoError(t, err)
	require.Len(t, resolved, 2)
	assert.Equal(t, []string{"Zed"}, resolved[0].KeyNames())
	assert.Equal(t, []string{"Alpha"}, resolved[1].KeyNames())

	_, err = r.Resolve([]string{"Alpha", "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Nope"`)
}

func TestStandardRegistry(t *testing.T) {
	assert.Equal(t, []string{annotate.ReadMeanLenKey}, annotate.DefaultRegistry.Names())
	a, ok := annotate.DefaultRegistry.Lookup("ReadMeanLen")
	require.True(t, ok)
	rml, ok := a.(*annotate.ReadMeanLen)
	require.True(t, ok)
	assert.Equal(t, byte(annotate.DefaultMinBaseQual), rml.MinBaseQual)

	a, ok = annotate.NewStandardRegistry(7).Lookup("ReadMeanLen")
	require.True(t, ok)
	assert.Equal(t, byte(7), a.(*annotate.ReadMeanLen).MinBaseQual)
}

func TestHeaderLine(t *testing.T) {
	l := annotate.HeaderLine{ID: "X", Number: "A", Type: annotate.Integer, Description: `a "quoted" word`}
	assert.Equal(t, `##INFO=<ID=X,Number=A,Type=Integer,Description="a \"quoted\" word">`, l.String())
	assert.Equal(t, "Flag", annotate.Flag.String())
	assert.Equal(t, "Character", annotate.Character.String())
	assert.Equal(t, "HeaderLineType(9)", annotate.HeaderLineType(9).String())
}
