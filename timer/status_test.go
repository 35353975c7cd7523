package timer

import (
	"testing"
	"time"

	"github.com/luno/jettison/jtest"
	"github.com/stretchr/testify/require"
)

func TestScheduleStatusValidate(t *testing.T) {
	good := ScheduleStatus{Last: Never, Next: time.Now().UTC(), LastUpdated: time.Now().UTC()}
	require.NoError(t, good.Validate())

	loc, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)

	bad := good
	bad.Next = bad.Next.In(loc)
	jtest.Require(t, ErrPrecondition, bad.Validate())
}
