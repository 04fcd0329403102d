package core

import (
	"errors"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/huangsam/devpulse/schema"
	"github.com/stretchr/testify/assert"
)

func TestStageError(t *testing.T) {
	cause := errors.New("rate limited")
	err := newStageError(schema.StageHarvest, ErrDataSource, cause)

	assert.EqualError(t, err, "data source error in harvest stage: rate limited")
	assert.ErrorIs(t, err, ErrDataSource)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrGeneration)

	var se *StageError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, schema.StageHarvest, se.Stage)
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, ErrDataSource, kindFor(schema.StageHarvest))
	assert.Equal(t, ErrAnalysis, kindFor(schema.StageAnalyze))
	assert.Equal(t, ErrGeneration, kindFor(schema.StageNarrate))
}

func TestFlatten(t *testing.T) {
	assert.Nil(t, flatten(nil))

	single := errors.New("one")
	assert.Equal(t, []error{single}, flatten(single))

	var merr *multierror.Error
	merr = multierror.Append(merr, errors.New("a"), errors.New("b"))
	flat := flatten(merr.ErrorOrNil())
	assert.Len(t, flat, 2)
	assert.EqualError(t, flat[0], "a")
}
