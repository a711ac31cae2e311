package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	base := stderrors.New("no model file")
	err := New(base).
		Component("npu").
		Category(CategoryInit).
		Priority(PriorityCritical).
		Context("path", "/models/sensevoice.onnx").
		Build()

	assert.Equal(t, "npu", err.Component)
	assert.Equal(t, CategoryInit, err.Category)
	assert.Equal(t, PriorityCritical, err.Priority)
	assert.Equal(t, "/models/sensevoice.onnx", err.Context["path"])
	assert.Contains(t, err.Error(), "no model file")
	assert.ErrorIs(t, err, base)
}

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := New(stderrors.New("queue full")).Category(CategoryBackpressure).Build()
	assert.True(t, IsCategory(err, CategoryBackpressure))
	assert.False(t, IsCategory(err, CategoryInit))
	assert.False(t, IsCategory(stderrors.New("plain"), CategoryInit))
}
