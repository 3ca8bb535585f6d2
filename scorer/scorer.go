// Package scorer aggregates per-stream load-generation results into a single
// pass/fail verdict against a failure-ratio threshold.
package scorer

import (
	"math"

	"github.com/omniaprotocol/node-benchmarking-service/model"
)

// Score computes the verdict for one job's aggregated results. ratio is
// 100*fail/(ok+fail), with 0/0 defined as 0 so a job with no completed
// requests at all is scored FINISHED(0) rather than ERRORED. thresholdPct is
// the configured failure-ratio threshold in percent, (0, 100].
func Score(ok, fail float64, thresholdPct float64) model.Verdict {
	var ratio float64
	if total := ok + fail; total > 0 {
		ratio = 100 * fail / total
	}
	if ratio >= thresholdPct {
		return model.Verdict{Kind: model.VerdictErrored, Count: int64(math.Floor(fail))}
	}
	return model.Verdict{Kind: model.VerdictFinished, Count: int64(math.Floor(ok))}
}
