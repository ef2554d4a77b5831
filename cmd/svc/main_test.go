package main

import (
	"testing"

	"svc/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResolutions(t *testing.T) {
	got, err := parseResolutions([]string{"a.txt=a.merged", "dir/b=dir/b.ours"})
	require.NoError(t, err)
	assert.Equal(t, []repo.Resolution{
		{FileName: "a.txt", ResolvedFile: "a.merged"},
		{FileName: "dir/b", ResolvedFile: "dir/b.ours"},
	}, got)

	for _, bad := range []string{"a.txt", "=x", "a="} {
		_, err := parseResolutions([]string{bad})
		assert.Error(t, err, bad)
	}

	got, err = parseResolutions(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
