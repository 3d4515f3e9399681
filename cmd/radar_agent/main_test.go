package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jonathan/job-radar/internal/ingest"
	"github.com/jonathan/job-radar/internal/scoring"
	"github.com/stretchr/testify/assert"
)

func TestExitCode_ValidationErrors(t *testing.T) {
	assert.Equal(t, 2, exitCode(fmt.Errorf("load stage: %w", ingest.ErrInvalidInput)))
	assert.Equal(t, 2, exitCode(fmt.Errorf("%w: bad multiplier", scoring.ErrInvalidProfile)))
}

func TestExitCode_RuntimeErrors(t *testing.T) {
	assert.Equal(t, 3, exitCode(errors.New("disk on fire")))
}
