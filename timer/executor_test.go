package timer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecutorFunc(t *testing.T) {
	var got TimerInfo
	f := ExecutorFunc(func(_ context.Context, info TimerInfo) error {
		got = info
		return nil
	})

	info := TimerInfo{Name: "t1"}
	assert.NoError(t, f.Execute(context.Background(), info))
	assert.Equal(t, info, got)
}
