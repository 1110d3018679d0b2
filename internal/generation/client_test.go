package generation

import "testing"

// #region test-split-insights
func TestSplitInsights(t *testing.T) {
	content := "A rhythm engine that listens.\n" +
		"It trades structure for surprise.\n" +
		"\n" +
		"INSIGHT: rhythm is structure\n" +
		"INSIGHT:   harmony is negotiation  \n" +
		"INSIGHT:\n"

	text, insights := splitInsights(content)

	if text != "A rhythm engine that listens.\nIt trades structure for surprise." {
		t.Errorf("unexpected body: %q", text)
	}
	if len(insights) != 2 {
		t.Fatalf("expected 2 insights, got %d: %v", len(insights), insights)
	}
	if insights[0] != "rhythm is structure" || insights[1] != "harmony is negotiation" {
		t.Errorf("unexpected insights: %v", insights)
	}
}

// #endregion test-split-insights

// #region test-split-no-insights
func TestSplitInsightsNone(t *testing.T) {
	text, insights := splitInsights("plain answer, nothing tagged")
	if text != "plain answer, nothing tagged" {
		t.Errorf("unexpected body: %q", text)
	}
	if len(insights) != 0 {
		t.Errorf("expected no insights, got %v", insights)
	}
}

// #endregion test-split-no-insights
