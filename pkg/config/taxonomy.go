package config

// CategoryRule maps an URL category to its matching keywords and crawl
// priority tier. Rules are evaluated in declaration order and the first
// keyword hit wins; ordering is part of the contract, not an accident.
type CategoryRule struct {
	Name     string   `json:"name"`
	Priority int      `json:"priority"`
	Keywords []string `json:"keywords"`
}

// PathFallback assigns a category when no keyword rule matched, based on
// a substring of the URL itself.
type PathFallback struct {
	Substring string `json:"substring"`
	Category  string `json:"category"`
	Priority  int    `json:"priority"`
}

// ClassifierConfig is the immutable keyword taxonomy driving the URL
// classifier. Build it once at startup and pass it in; components never
// mutate it.
type ClassifierConfig struct {
	// HomeDomains are substring-matched against the URL; anything else is
	// classified ("external", 3) before keywords are consulted.
	HomeDomains []string `json:"home_domains"`

	Categories []CategoryRule `json:"categories"`
	Fallbacks  []PathFallback `json:"fallbacks"`

	DefaultCategory string `json:"default_category"`
	DefaultPriority int    `json:"default_priority"`
}

// IntentRule maps an intent identifier to its scoring keywords. Rules are
// held in a slice, not a map, so tie-breaking by declaration order is
// deterministic across runs.
type IntentRule struct {
	ID       string   `json:"id"`
	Keywords []string `json:"keywords"`
}

// IntentConfig is the immutable intent taxonomy driving QA record routing.
type IntentConfig struct {
	Intents       []IntentRule `json:"intents"`
	DefaultIntent string       `json:"default_intent"`
}

// DefaultClassifierConfig returns the CTU admission URL taxonomy.
func DefaultClassifierConfig() *ClassifierConfig {
	return &ClassifierConfig{
		HomeDomains: []string{"ctu.edu.vn"},
		Categories: []CategoryRule{
			// Each rule carries both the diacritic form (matches anchor
			// text) and the ASCII slug form (matches URL paths).
			{Name: "nganh_hoc", Priority: 1, Keywords: []string{
				"ngành", "chuyên ngành", "mã ngành", "đào tạo", "bậc đại học", "giới thiệu ngành",
				"nganh", "chuyen-nganh", "gioi-thieu-nganh", "danh-muc-nganh",
			}},
			{Name: "phuong_thuc_xet_tuyen", Priority: 1, Keywords: []string{
				"phương thức", "xét tuyển", "tuyển thẳng", "thi tốt nghiệp", "học bạ", "v-sat", "vsat",
				"phuong-thuc", "xet-tuyen", "tuyen-thang", "hoc-ba", "thpt", "uu-tien",
			}},
			{Name: "chi_tieu", Priority: 1, Keywords: []string{
				"chỉ tiêu", "ngành và chỉ tiêu", "tuyển sinh", "chi-tieu",
			}},
			{Name: "hoc_phi", Priority: 2, Keywords: []string{
				"học phí", "chi phí", "tài chính", "học bổng",
				"hoc-phi", "hoc-bong", "tuition", "scholarship", "ho-tro",
			}},
			{Name: "chuong_trinh", Priority: 2, Keywords: []string{
				"chương trình tiên tiến", "chất lượng cao", "đại trà", "cttt", "ctclc",
				"tien-tien", "chat-luong-cao",
			}},
			{Name: "thong_tin_tuyen_sinh", Priority: 1, Keywords: []string{
				"thông tin tuyển sinh", "đại học chính quy",
			}},
			{Name: "lien_he", Priority: 3, Keywords: []string{
				"liên hệ", "tư vấn", "facebook", "email", "điện thoại",
				"lien-he", "contact", "tu-van", "dia-chi", "phone",
			}},
			{Name: "de_an", Priority: 3, Keywords: []string{
				"đề án", "quy chế", "quyết định", "văn bản", "de-an",
			}},
			{Name: "lich_thi", Priority: 2, Keywords: []string{
				"lịch thi", "tổ chức thi", "thời gian thi", "lich-thi",
			}},
			{Name: "ktx_csvc", Priority: 3, Keywords: []string{
				"ký túc xá", "cơ sở vật chất", "tân sinh viên", "ky-tuc-xa",
			}},
		},
		Fallbacks: []PathFallback{
			{Substring: "tuyensinh", Category: "thong_tin_tuyen_sinh", Priority: 2},
			{Substring: "ctc.ctu.edu.vn", Category: "chuong_trinh_khac", Priority: 3},
			{Substring: "gs.ctu.edu.vn", Category: "chuong_trinh_khac", Priority: 3},
		},
		DefaultCategory: "thong_tin_chung",
		DefaultPriority: 3,
	}
}

// DefaultIntentConfig returns the CTU admission intent taxonomy used to
// bucket QA records for chatbot routing.
func DefaultIntentConfig() *IntentConfig {
	return &IntentConfig{
		Intents: []IntentRule{
			{ID: "hoi_nganh_hoc", Keywords: []string{
				"ngành", "chuyên ngành", "đào tạo", "chương trình", "major", "faculty", "khoa", "bộ môn",
			}},
			{ID: "hoi_phuong_thuc_xet_tuyen", Keywords: []string{
				"xét tuyển", "phương thức", "thi", "admission", "entrance", "tuyển sinh",
			}},
			{ID: "hoi_hoc_phi", Keywords: []string{
				"học phí", "chi phí", "tuition", "fee", "cost", "tiền học", "lệ phí",
			}},
			{ID: "hoi_lien_he", Keywords: []string{
				"liên hệ", "contact", "phone", "email", "address", "địa chỉ", "hotline", "tư vấn",
			}},
			{ID: "hoi_diem_chuan", Keywords: []string{
				"điểm chuẩn", "điểm xét tuyển", "điểm thi", "điểm số", "cut-off", "benchmark",
			}},
			{ID: "hoi_ho_so_xet_tuyen", Keywords: []string{
				"hồ sơ", "thủ tục", "giấy tờ", "đăng ký", "nộp hồ sơ", "documents", "application",
			}},
			{ID: "hoi_lich_tuyen_sinh", Keywords: []string{
				"lịch", "thời gian", "deadline", "hạn chót", "schedule", "calendar", "ngày",
			}},
			{ID: "hoi_hoc_bong", Keywords: []string{
				"học bổng", "hỗ trợ", "scholarship", "tài chính", "miễn giảm", "trợ cấp",
			}},
			{ID: "hoi_co_so_vat_chat", Keywords: []string{
				"cơ sở vật chất", "ký túc xá", "dormitory", "facilities", "infrastructure", "ktx",
			}},
			{ID: "hoi_sinh_vien_quoc_te", Keywords: []string{
				"quốc tế", "international", "nước ngoài", "foreign", "exchange",
			}},
			{ID: "hoi_chuong_trinh_lien_ket", Keywords: []string{
				"liên kết", "partnership", "collaboration", "joint program", "hợp tác",
			}},
			{ID: "hoi_thuc_tap_viec_lam", Keywords: []string{
				"thực tập", "việc làm", "internship", "job", "career", "employment", "tốt nghiệp",
			}},
			{ID: "hoi_hoat_dong_sinh_vien", Keywords: []string{
				"hoạt động", "sinh viên", "clb", "club", "activities", "extracurricular",
			}},
			{ID: "hoi_dao_tao_sau_dai_hoc", Keywords: []string{
				"sau đại học", "thạc sĩ", "tiến sĩ", "master", "phd", "graduate", "postgraduate",
			}},
			{ID: "hoi_thong_tin_chung", Keywords: []string{
				"thông tin", "general", "about", "overview", "giới thiệu", "tổng quan",
			}},
		},
		DefaultIntent: "hoi_thong_tin_chung",
	}
}
