package sl_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/geniepay/geniepay/internal/lib/sl"
)

func TestErr(t *testing.T) {
	attr := sl.Err(errors.New("boom"))

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "boom", attr.Value.String())
}

func TestDiscardLogger(t *testing.T) {
	log := sl.DiscardLogger()
	assert.NotNil(t, log)
	log.Info("must not panic")
}
