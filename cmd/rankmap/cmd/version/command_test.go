package version

import (
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rankmap/internal/appcontext"
	"github.com/agentstation/rankmap/internal/cmd/cmdtest"
)

func TestVersionText(t *testing.T) {
	out, err := cmdtest.Run(t, NewCommand(&appcontext.Mock{VersionValue: "v1.2.3"}))
	require.NoError(t, err)
	assert.Contains(t, out, "rankmap version v1.2.3\n")
	assert.Contains(t, out, "go version: "+runtime.Version())
}

func TestVersionJSON(t *testing.T) {
	out, err := cmdtest.Run(t, NewCommand(&appcontext.Mock{Format: "json"}))
	require.NoError(t, err)

	var info Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "test", info.Version)
	assert.Equal(t, "none", info.Commit)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}
