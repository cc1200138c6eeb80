package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/kotone-fm/kotone/config"
	"github.com/kotone-fm/kotone/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrator struct {
	versions []uint
	dirty    bool
	upErr    error
	forced   []int
}

func (m *fakeMigrator) Up() error {
	if m.upErr != nil {
		return m.upErr
	}
	m.versions = append(m.versions, 1)
	return nil
}

func (m *fakeMigrator) Version() (uint, bool, error) {
	if len(m.versions) == 0 {
		return 0, false, migrate.ErrNilVersion
	}
	return m.versions[len(m.versions)-1], m.dirty, nil
}

func (m *fakeMigrator) Force(v int) error {
	m.forced = append(m.forced, v)
	return nil
}

func TestMigrateUp(t *testing.T) {
	var out bytes.Buffer
	m := &fakeMigrator{}

	require.NoError(t, runMigrateAction(&out, m, "up", nil))
	assert.Equal(t, "schema migrated from version 0 to 1\n", out.String())

	out.Reset()
	m.upErr = migrate.ErrNoChange
	require.NoError(t, runMigrateAction(&out, m, "up", nil))
	assert.Equal(t, "schema already at version 1\n", out.String())

	m.upErr = errors.E(errors.Testing)
	assert.Error(t, runMigrateAction(&out, m, "up", nil))
}

func TestMigrateVersion(t *testing.T) {
	var out bytes.Buffer
	m := &fakeMigrator{}

	require.NoError(t, runMigrateAction(&out, m, "version", nil))
	assert.Equal(t, "no migrations applied\n", out.String())

	out.Reset()
	m.versions = []uint{3}
	require.NoError(t, runMigrateAction(&out, m, "version", nil))
	assert.Equal(t, "schema version 3\n", out.String())

	out.Reset()
	m.dirty = true
	require.NoError(t, runMigrateAction(&out, m, "version", nil))
	assert.Contains(t, out.String(), "dirty")
}

func TestMigrateForce(t *testing.T) {
	var out bytes.Buffer
	m := &fakeMigrator{}

	require.NoError(t, runMigrateAction(&out, m, "force", []string{"1"}))
	require.NoError(t, runMigrateAction(&out, m, "force", []string{"-1"}))
	assert.Equal(t, []int{1, -1}, m.forced)

	for _, args := range [][]string{nil, {"1", "2"}, {"one"}, {"-2"}} {
		err := runMigrateAction(&out, m, "force", args)
		require.Error(t, err, args)
		assert.Equal(t, 2, err.(ExitError).StatusCode(), args)
	}
	assert.Len(t, m.forced, 2)
}

func TestMigrateList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, listMigrations(&out))
	assert.Equal(t, "   1  songs\n", out.String())
}

func TestMigrateUnknownAction(t *testing.T) {
	var out bytes.Buffer
	m := &migrateCmd{out: &out}

	loaded := false
	loader := func() (config.Config, error) {
		loaded = true
		return config.TestConfig(), nil
	}

	err := m.run(context.Background(), loader, "down", nil)
	require.Error(t, err)
	assert.Equal(t, 2, err.(ExitError).StatusCode())
	assert.False(t, loaded)

	// ls works without any configuration
	require.NoError(t, m.run(context.Background(), loader, "ls", nil))
	assert.False(t, loaded)
	assert.Contains(t, out.String(), "songs")
}
