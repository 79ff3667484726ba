package server

import "github.com/TobiSchelling/expedanalysis/internal/analytics"

// uiText holds the interface strings of one language.
type uiText struct {
	Lang           string
	Title          string
	Welcome        string
	Logout         string
	Login          string
	Email          string
	Password       string
	LoginFailed    string
	TooManyLogins  string
	Province       string
	AllProvinces   string
	Show           string
	FilteredData   string
	NoReviews      string
	Distribution   string
	WordCloud      string
	NGrams         string
	NgramIntro     string
	TopBigrams     string
	TopTrigrams    string
	NgramNote      string
	Advice         string
	AdviceIntro    string
	Topic          string
	Count          string
	Percent        string
	Ngram          string
	Download       string
	Analysis       string
	Infer          string
	InferPrompt    string
	InferButton    string
	Probability    string
	MostLikely     string
	RecentInfer    string
	EmptyInput     string
	ProcessedInput string
}

var texts = map[analytics.Language]uiText{
	analytics.Indonesian: {
		Lang:           "id",
		Title:          "ExpedAnalysis",
		Welcome:        "Selamat datang, %s",
		Logout:         "Keluar",
		Login:          "Masuk",
		Email:          "Email",
		Password:       "Kata sandi",
		LoginFailed:    "Email atau kata sandi salah",
		TooManyLogins:  "Terlalu banyak percobaan masuk, coba lagi nanti",
		Province:       "Provinsi",
		AllProvinces:   "Semua Provinsi",
		Show:           "Tampilkan",
		FilteredData:   "Filtered Data: %d reviews",
		NoReviews:      "Review tidak ditemukan",
		Distribution:   "a. Distribusi Topik",
		WordCloud:      "b. Word Cloud",
		NGrams:         "c. Analisis N-Gram",
		NgramIntro:     "Top Bigrams and Trigrams:",
		TopBigrams:     "Top Bigrams",
		TopTrigrams:    "Top Trigrams",
		NgramNote:      "Hasil di atas merupakan hasil kombinasi dua dan tiga kata yang paling sering digunakan dalam review pengguna.",
		Advice:         "d. Masukan",
		AdviceIntro:    "Berikut adalah masukan yang bisa kami berikan :",
		Topic:          "Topik",
		Count:          "Jumlah",
		Percent:        "Persentase",
		Ngram:          "N-Gram",
		Download:       "Unduh Excel",
		Analysis:       "Analisis",
		Infer:          "Klasifikasi Ulasan",
		InferPrompt:    "Masukkan ulasan pelanggan",
		InferButton:    "Analisis",
		Probability:    "Probabilitas",
		MostLikely:     "Topik paling mungkin",
		RecentInfer:    "Riwayat klasifikasi",
		EmptyInput:     "Masukkan teks ulasan terlebih dahulu",
		ProcessedInput: "Teks setelah praproses",
	},
	analytics.English: {
		Lang:           "en",
		Title:          "ExpedAnalysis",
		Welcome:        "Welcome, %s",
		Logout:         "Logout",
		Login:          "Login",
		Email:          "Email",
		Password:       "Password",
		LoginFailed:    "Invalid email or password",
		TooManyLogins:  "Too many login attempts, try again later",
		Province:       "Province",
		AllProvinces:   "All Provinces",
		Show:           "Show",
		FilteredData:   "Filtered Data: %d reviews",
		NoReviews:      "No reviews found",
		Distribution:   "a) Distribution of Topics",
		WordCloud:      "b) Word Cloud for Processed Reviews",
		NGrams:         "c) N-Grams Analysis from Processed Reviews",
		NgramIntro:     "Top Bigrams and Trigrams:",
		TopBigrams:     "Top Bigrams",
		TopTrigrams:    "Top Trigrams",
		NgramNote:      "The tables above list the two- and three-word combinations used most often in customer reviews.",
		Advice:         "d) Recommendations",
		AdviceIntro:    "Here is what we recommend:",
		Topic:          "Topic",
		Count:          "Count",
		Percent:        "Percent",
		Ngram:          "N-Gram",
		Download:       "Download Excel",
		Analysis:       "Analysis",
		Infer:          "Classify a Review",
		InferPrompt:    "Enter a customer review",
		InferButton:    "Analyse",
		Probability:    "Probability",
		MostLikely:     "Most likely topic",
		RecentInfer:    "Recent classifications",
		EmptyInput:     "Please enter review text first",
		ProcessedInput: "Preprocessed text",
	},
}

func textFor(lang analytics.Language) uiText {
	if t, ok := texts[lang]; ok {
		return t
	}
	return texts[analytics.Indonesian]
}
