package idhash

import "testing"

func TestComputeListEventID(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		listedDate string
		reasons    string
		analysis   string
	}{
		{
			name:       "typical disclosure",
			code:       "000592",
			listedDate: "2025-12-19",
			reasons:    "日振幅值达15%的证券",
			analysis:   "买一主买，成功率48.95%",
		},
		{
			name:       "empty qualitative fields",
			code:       "002104",
			listedDate: "2025-12-19",
			reasons:    "",
			analysis:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeListEventID(tt.code, tt.listedDate, tt.reasons, tt.analysis)

			if len(got) != 64 {
				t.Errorf("ComputeListEventID() length = %d, want 64", len(got))
			}

			// Same inputs must produce the same id.
			again := ComputeListEventID(tt.code, tt.listedDate, tt.reasons, tt.analysis)
			if got != again {
				t.Errorf("ComputeListEventID() not deterministic: %s != %s", got, again)
			}
		})
	}
}

func TestComputeListEventID_ReasonDistinguishes(t *testing.T) {
	// Same instrument, same day, different reasons: distinct ids.
	a := ComputeListEventID("000592", "2025-12-19", "日振幅值达15%的证券", "")
	b := ComputeListEventID("000592", "2025-12-19", "日跌幅偏离值达7%的证券", "")
	if a == b {
		t.Errorf("ids collide for different reasons: %s", a)
	}
}

func TestComputeListEventID_AnalysisDistinguishes(t *testing.T) {
	a := ComputeListEventID("000592", "2025-12-19", "日振幅值达15%的证券", "游资净买入")
	b := ComputeListEventID("000592", "2025-12-19", "日振幅值达15%的证券", "机构净卖出")
	if a == b {
		t.Errorf("ids collide for different analyses: %s", a)
	}
}
