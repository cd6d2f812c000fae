// SPDX-License-Identifier: GPL-3.0-or-later

package mysql

// Derived metrics. Every ratio reports 0 when its denominator is 0, a
// freshly started or idle server must not produce spurious percentages.

func cacheHitRate(hits, inserts int64) float64 {
	if hits+inserts == 0 {
		return 0
	}
	return float64(hits) / float64(hits+inserts) * 100
}

func connectionUsagePct(maxUsed, maxConns int64) float64 {
	if maxConns <= 0 {
		return 0
	}
	return float64(maxUsed) / float64(maxConns) * 100
}

func bufferPoolUsagePct(totalSize, totalFree int64) float64 {
	if totalSize <= 0 {
		return 0
	}
	return float64(totalSize-totalFree) / float64(totalSize) * 100
}

func bufferPoolDirtyPct(dirtyPages, totalSize int64) float64 {
	if totalSize <= 0 {
		return 0
	}
	return float64(dirtyPages) / float64(totalSize) * 100
}
