package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveOracleCall(t *testing.T) {
	req := require.New(t)

	okBefore := testutil.ToFloat64(OracleCalls.WithLabelValues("base", ResultOK))
	errBefore := testutil.ToFloat64(OracleCalls.WithLabelValues("base", ResultError))

	ObserveOracleCall("base", time.Now(), nil)
	ObserveOracleCall("base", time.Now(), errors.New("boom"))
	ObserveOracleCall("base", time.Now(), nil)

	req.Equal(okBefore+2, testutil.ToFloat64(OracleCalls.WithLabelValues("base", ResultOK)))
	req.Equal(errBefore+1, testutil.ToFloat64(OracleCalls.WithLabelValues("base", ResultError)))
}

func TestSearchPassAndBlockAccepted(t *testing.T) {
	req := require.New(t)

	before := testutil.ToFloat64(SearchPasses.WithLabelValues(OutcomeExhausted))
	SearchPass(OutcomeExhausted)
	req.Equal(before+1, testutil.ToFloat64(SearchPasses.WithLabelValues(OutcomeExhausted)))

	before = testutil.ToFloat64(BlocksAccepted.WithLabelValues(OriginRemote))
	BlockAccepted(OriginRemote)
	req.Equal(before+1, testutil.ToFloat64(BlocksAccepted.WithLabelValues(OriginRemote)))
}
