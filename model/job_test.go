package model

import "testing"

func TestJobValidate(t *testing.T) {
	tests := []struct {
		name    string
		job     Job
		wantErr bool
	}{
		{"valid", Job{EndpointURL: "http://x", NumThreads: 1, Duration: 1}, false},
		{"missing endpoint", Job{NumThreads: 1, Duration: 1}, true},
		{"zero threads", Job{EndpointURL: "http://x", Duration: 1}, true},
		{"zero duration", Job{EndpointURL: "http://x", NumThreads: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestChainValid(t *testing.T) {
	if !ChainBTC.Valid() || !ChainEVM.Valid() {
		t.Fatal("expected BTC and EVM to be valid chains")
	}
	if Chain("SOL").Valid() {
		t.Fatal("expected SOL to be invalid")
	}
}

func TestStatusCodeTerminal(t *testing.T) {
	tests := []struct {
		status StatusCode
		want   bool
	}{
		{StatusPending, false},
		{StatusAllocated, false},
		{StatusErrored, true},
		{StatusCode(1), true},
		{StatusCode(1000), true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("StatusCode(%d).Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestVerdictStatusCode(t *testing.T) {
	if got := (Verdict{Kind: VerdictErrored, Count: 42}).StatusCode(); got != StatusErrored {
		t.Errorf("errored verdict status = %d, want %d", got, StatusErrored)
	}
	if got := (Verdict{Kind: VerdictFinished, Count: 17}).StatusCode(); got != StatusCode(17) {
		t.Errorf("finished verdict status = %d, want 17", got)
	}
}
