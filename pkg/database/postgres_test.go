package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/gradebook-api/pkg/config"
)

func TestDSNDefaultsSSLMode(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "gradebook"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=gradebook sslmode=disable", dsn)
}
