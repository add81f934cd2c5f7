package llm

import (
	"fmt"
	"unicode/utf8"
)

// BuildExtractionPrompt assembles the Vietnamese QA extraction prompt for
// a crawled page. Page text is truncated to maxChars to stay inside the
// model's context window; the source URL is echoed so the model fills the
// source field itself.
func BuildExtractionPrompt(pageText, source string, maxChars int) string {
	if maxChars > 0 && len(pageText) > maxChars {
		cut := maxChars
		// Back up to a rune boundary so truncation never splits a
		// multi-byte Vietnamese character.
		for cut > 0 && !utf8.RuneStart(pageText[cut]) {
			cut--
		}
		pageText = pageText[:cut]
	}

	return fmt.Sprintf(`Bạn là chuyên gia tư vấn tuyển sinh Đại học Cần Thơ (CTU).
Hãy phân tích nội dung trang và tạo ra các cặp hỏi-đáp tiếng Việt tự nhiên.

QUAN TRỌNG:
- Tất cả câu hỏi và câu trả lời phải bằng tiếng Việt
- Tạo câu hỏi tự nhiên như sinh viên thật sự hỏi
- Trả lời chi tiết, chính xác dựa trên nội dung
- Bao gồm mã ngành, chỉ tiêu, học phí, tổ hợp xét tuyển
- Tạo 5-8 cặp hỏi-đáp từ nội dung

Trả về JSON format:
{
    "qa_pairs": [
        {
            "question": "Câu hỏi tiếng Việt",
            "answer": "Câu trả lời chi tiết tiếng Việt",
            "category": "nganh_hoc|phuong_thuc_xet_tuyen|hoc_phi|lien_he|thong_tin_chung",
            "priority": 1-3,
            "source": "%s"
        }
    ]
}

Nội dung trang:
%s
`, source, pageText)
}
