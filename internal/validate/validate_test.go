// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package validate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"  Someone@Example.ORG ", "someone@example.org", true},
		{"first.last+tag@sub.domain.io", "first.last+tag@sub.domain.io", true},
		{"", "", false},
		{"no-at-sign", "", false},
		{"a@b", "", false},
		{"a@-b.com", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Email(tt.in)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrInputValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2020/01/15", "2020/01/15", true},
		{"2020-1-5", "2020/01/05", true},
		{"2020 12 31", "2020/12/31", true},
		{"20200115", "2020/01/15", true},
		{"2024/02/29", "2024/02/29", true},
		{"2023/02/29", "", false},
		{"2020/04/31", "", false},
		{"2020/13/01", "", false},
		{"2020/00/10", "", false},
		{"2020/01/00", "", false},
		{"20/01/01", "", false},
		{"yesterday", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Date(tt.in)
			if !tt.ok {
				require.Error(t, err)
				assert.True(t, errors.Is(err, types.ErrInputValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateRange(t *testing.T) {
	s, e, err := DateRange("2020-1-1", "2020/12/31")
	require.NoError(t, err)
	assert.Equal(t, "2020/01/01", s)
	assert.Equal(t, "2020/12/31", e)

	_, _, err = DateRange("2021/01/01", "2020/01/01")
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}

func TestPMID(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"12345", 12345, true},
		{" 00042 ", 42, true},
		{"99999999", 99999999, true},
		{"123456789", 0, false},
		{"0", 0, false},
		{"000", 0, false},
		{"", 0, false},
		{"12a", 0, false},
		{"-5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := PMID(tt.in)
			if !tt.ok {
				assert.True(t, errors.Is(err, types.ErrInputValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaxResultsAndChunkSize(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := diag.FromZap(zap.New(core))

	assert.Equal(t, 500, MaxResults(500, log))
	assert.Equal(t, MaxResultsCeiling, MaxResults(0, log))
	assert.Equal(t, MaxResultsCeiling, MaxResults(MaxResultsCeiling+1, log))

	assert.Equal(t, 0, ChunkSize(0, log))
	assert.Equal(t, 25, ChunkSize(25, log))
	assert.Equal(t, DefaultChunkSize, ChunkSize(-3, log))

	assert.Equal(t, 3, logs.Len())
}

func TestTableNames(t *testing.T) {
	require.NoError(t, TableNames(types.DefaultTableNames()))
	assert.Error(t, TableName("papers; DROP TABLE authors"))
	assert.Error(t, TableName("1papers"))
	assert.Error(t, TableName(""))

	err := TableNames(types.TableNames{Papers: "a", Authors: "a", Pairs: "b"})
	assert.True(t, errors.Is(err, types.ErrInputValidation))
}

func TestPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("default name", func(t *testing.T) {
		got, err := Path(PathOptions{Dir: dir, Suffixes: []string{".csv"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "default.csv"), got)
	})

	t.Run("suffix replaced", func(t *testing.T) {
		got, err := Path(PathOptions{Dir: dir, Name: "out.txt", Suffixes: []string{".csv"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "out.csv"), got)
	})

	t.Run("accepted alternate suffix", func(t *testing.T) {
		got, err := Path(PathOptions{Dir: dir, Name: "pubs.sqlite", Suffixes: []string{".db", ".sqlite"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "pubs.sqlite"), got)
	})

	t.Run("creates directory", func(t *testing.T) {
		sub := filepath.Join(dir, "a", "b")
		got, err := Path(PathOptions{Dir: sub, Name: "x.csv", Suffixes: []string{".csv"}}, nil)
		require.NoError(t, err)
		assert.DirExists(t, sub)
		assert.Equal(t, filepath.Join(sub, "x.csv"), got)
	})

	t.Run("absolute name ignores dir", func(t *testing.T) {
		abs := filepath.Join(dir, "abs.csv")
		got, err := Path(PathOptions{Dir: "/nonexistent-ignored", Name: abs, Suffixes: []string{".csv"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, abs, got)
	})

	existing := filepath.Join(dir, "exists.csv")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o644))

	t.Run("existing without overwrite", func(t *testing.T) {
		_, err := Path(PathOptions{Name: existing, Suffixes: []string{".csv"}}, nil)
		assert.True(t, errors.Is(err, types.ErrInputValidation))
	})

	t.Run("existing with overwrite", func(t *testing.T) {
		got, err := Path(PathOptions{Name: existing, Suffixes: []string{".csv"}, Overwrite: true}, nil)
		require.NoError(t, err)
		assert.Equal(t, existing, got)
	})

	t.Run("must exist", func(t *testing.T) {
		_, err := Path(PathOptions{Name: existing, Suffixes: []string{".csv"}, MustExist: true, Overwrite: true}, nil)
		require.NoError(t, err)

		_, err = Path(PathOptions{Dir: dir, Name: "missing.csv", Suffixes: []string{".csv"}, MustExist: true, Overwrite: true}, nil)
		assert.True(t, errors.Is(err, types.ErrInputValidation))
	})

	t.Run("must exist needs overwrite", func(t *testing.T) {
		_, err := Path(PathOptions{Name: existing, Suffixes: []string{".csv"}, MustExist: true}, nil)
		assert.True(t, errors.Is(err, types.ErrInputValidation))
	})
}
