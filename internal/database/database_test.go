package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/logger"
)

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Info, gormLogLevel("debug"))
	assert.Equal(t, logger.Warn, gormLogLevel("info"))
	assert.Equal(t, logger.Error, gormLogLevel("error"))
}

func TestConstraintsComeInDropAddPairs(t *testing.T) {
	for i := 0; i+1 < len(constraints)-1; i += 2 {
		assert.Contains(t, constraints[i], "DROP CONSTRAINT IF EXISTS")
		assert.Contains(t, constraints[i+1], "ADD CONSTRAINT")
	}
}
