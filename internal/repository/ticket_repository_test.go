package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestIsDuplicateClaim(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry '3-A1-1' for key 'uq_live_claim'"}
	assert.True(t, IsDuplicateClaim(dup))
	assert.True(t, IsDuplicateClaim(fmt.Errorf("insert ticket: %w", dup)))

	assert.False(t, IsDuplicateClaim(nil))
	assert.False(t, IsDuplicateClaim(errors.New("plain failure")))
	assert.False(t, IsDuplicateClaim(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}))
}
