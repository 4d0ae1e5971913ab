package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"

	"volscope/internal/config"
)

func TestVersionStrings(t *testing.T) {
	info := GetVersionInfo()
	assert.Equal(t, config.AppVersion, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, DataFormatVersion, info.DataFormat)

	assert.Equal(t, "volscope v"+config.AppVersion, GetVersionString())
	assert.Contains(t, GetFullVersionString(), "commit: "+GitCommit)
}
