package observability

import "testing"

func TestStageWindowSnapshotPercentiles(t *testing.T) {
	w := newStageWindow(8)
	for _, ms := range []float64{10, 20, 30, 40} {
		w.Observe("triage", ms)
	}

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(snap.Stages))
	}
	st := snap.Stages[0]
	if st.Stage != "triage" || st.Samples != 4 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.LastMS != 40 {
		t.Fatalf("LastMS = %v, want 40", st.LastMS)
	}
	if st.AvgMS != 25 {
		t.Fatalf("AvgMS = %v, want 25", st.AvgMS)
	}
	if st.P50MS != 25 {
		t.Fatalf("P50MS = %v, want 25", st.P50MS)
	}
}

func TestStageWindowWrapsAround(t *testing.T) {
	w := newStageWindow(2)
	w.Observe("generation", 100)
	w.Observe("generation", 200)
	w.Observe("generation", 300)

	snap := w.Snapshot()
	if len(snap.Stages) != 1 {
		t.Fatalf("stages = %d, want 1", len(snap.Stages))
	}
	if snap.Stages[0].Samples != 2 {
		t.Fatalf("Samples = %d, want 2 after wrap", snap.Stages[0].Samples)
	}
	if snap.Stages[0].LastMS != 300 {
		t.Fatalf("LastMS = %v, want 300", snap.Stages[0].LastMS)
	}
}

func TestStageWindowIgnoresInvalid(t *testing.T) {
	w := newStageWindow(4)
	w.Observe("", 10)
	w.Observe("safety", -5)
	if got := len(w.Snapshot().Stages); got != 0 {
		t.Fatalf("stages = %d, want 0", got)
	}
}
