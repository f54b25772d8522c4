package db

import (
	"io/fs"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carhire/apiserver/config"
	"github.com/carhire/apiserver/internal/db/migrations"
)

func TestURL(t *testing.T) {
	raw := URL(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "carhire",
		Password: "p@ss word",
		DBName:   "carhire_db",
		UseSSL:   true,
	})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, "postgres", u.Scheme)
	require.Equal(t, "db.internal:5433", u.Host)
	require.Equal(t, "/carhire_db", u.Path)
	require.Equal(t, "require", u.Query().Get("sslmode"))

	password, ok := u.User.Password()
	require.True(t, ok)
	require.Equal(t, "p@ss word", password)
}

func TestURLDisablesSSLByDefault(t *testing.T) {
	u, err := url.Parse(URL(config.DatabaseConfig{Host: "localhost", Port: 5432}))
	require.NoError(t, err)
	require.Equal(t, "disable", u.Query().Get("sslmode"))
}

func TestMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrations.FS, "*.down.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)
	require.Len(t, downs, len(ups))
}
