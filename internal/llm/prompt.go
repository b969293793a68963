// Somnographus - Sleep Sound Recommendation Service
// Copyright 2026 Kooala Team
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kooala/somnographus

package llm

import (
	"fmt"
	"strings"

	"github.com/kooala/somnographus/internal/catalog"
)

// therapistPersona is the system message for recommendation-text generation.
// The model answers in Korean; the instructions stay in English because the
// chat models follow English system prompts more reliably.
const therapistPersona = "You are a 'Sleep Therapist' who writes with deep empathy for the user's tired mind, " +
	"based on your knowledge of psychology and sleep science. " +
	"Your goal is to write a warm, comforting essay, not a dry, technical manual. " +
	"Follow these steps to structure your response: " +
	"1. Start by acknowledging the user's specific feelings and struggles to show empathy. " +
	"2. Choose the single best sound from the list that directly addresses the user's main problem. " +
	"3. Naturally connect the sound's effect to the user's problem and describe the comforting experience the user will have. " +
	"**Your entire response must be written in gentle, natural, and non-repetitive Korean.**"

// exampleResponse anchors the register and length of the generated essay.
const exampleResponse = `"요즘 스트레스가 많아 뒤척이는 밤이 많으셨군요. 그런 날에는 마음을 차분하게 다독여줄 자연의 소리가 큰 위로가 될 수 있어요.
특히 '밤 귀뚜라미 소리'가 들려주는 일정하고 평화로운 리듬은, 복잡한 생각의 고리를 끊고 마음을 고요하게 만드는 데 도움을 줄 거예요.
이 소리를 들으며, 마치 너른 들판에 누워 밤하늘을 보는 듯한 편안함에 몸을 맡겨보세요. 오늘 밤은 부디 푹 주무시길 바랄게요."`

// recommendationPrompt renders the user message for generation: the user's
// status text plus the candidate sounds with their effects.
func recommendationPrompt(userStatus string, sounds []catalog.Entry) string {
	var list strings.Builder
	for _, s := range sounds {
		fmt.Fprintf(&list, "- Title: %s, Description: %s\n", s.ID, s.Effect)
	}

	return fmt.Sprintf(`Based on the user's situation and the provided sound list, please write a warm and persuasive recommendation essay for the user. Follow the thinking process outlined in the system message.

--- User's Status ---
%s

--- Recommended Sound List ---
%s
--- Example of an excellent response (This is the style you should aim for) ---
%s
---

Now, think step-by-step and then write the final recommendation for the user. Ensure the entire response is in polite and natural Korean.`,
		userStatus, list.String(), exampleResponse)
}
