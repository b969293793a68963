// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package recommend

import (
	"fmt"

	"github.com/kooala/somnographus/internal/catalog"
)

// defaultSoundName substitutes for the top candidate when the list is empty.
const defaultSoundName = "추천 사운드"

// fallbackText renders the deterministic Korean recommendation used when
// essay generation fails. It names the top candidate so the message stays
// personal even in degraded mode.
func fallbackText(sounds []catalog.Entry) string {
	top := defaultSoundName
	if len(sounds) > 0 {
		top = sounds[0].ID
	}
	return fmt.Sprintf(
		"당신의 현재 상황을 고려하여 몇 가지 사운드를 찾아봤어요. '%s' 같은 소리는 어떠신가요? 오늘 밤, 이 소리들과 함께 편안한 시간을 보내시길 바래요.",
		top,
	)
}
