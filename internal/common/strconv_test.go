package common_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-splitbill/internal/common"
)

func TestParseFloatDefault(t *testing.T) {
	require.InDelta(t, 150000, common.ParseFloatDefault("150000", 0), 1e-9)
	require.InDelta(t, 12.5, common.ParseFloatDefault("12.5", 0), 1e-9)
	require.InDelta(t, 0, common.ParseFloatDefault("", 0), 1e-9)
	require.InDelta(t, 0, common.ParseFloatDefault("abc", 0), 1e-9)
	require.InDelta(t, 7, common.ParseFloatDefault("", 7), 1e-9)
}
