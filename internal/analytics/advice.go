package analytics

import (
	"fmt"

	"github.com/TobiSchelling/expedanalysis/internal/reviews"
)

var diagnosisTemplates = map[Language]string{
	Indonesian: "Berdasarkan Word Cloud diatas, dapat dilihat bahwa masalah utama yang terjadi adalah %s. Hal ini terlihat dari kata-kata yang sering muncul, seperti %s. %s",
	English:    "Based on the word cloud above, the main problem is %s. This can be seen from the most frequent words, such as %s. %s",
}

var conjunctions = map[Language]string{
	Indonesian: "dan",
	English:    "and",
}

var problems = map[Language]map[Category]string{
	Indonesian: {
		Delay:         "keterlambatan pengiriman",
		Service:       "buruknya kualitas pelayanan",
		Communication: "buruknya komunikasi antara kurir dan pelanggan",
	},
	English: {
		Delay:         "late deliveries",
		Service:       "poor service quality",
		Communication: "poor communication between couriers and customers",
	},
}

var followUps = map[Language]map[Category]string{
	Indonesian: {
		Delay:         "Masalah ini menunjukkan adanya kendala dalam manajemen waktu pengiriman, yang dapat disebabkan karena rute yang kurang optimal, kurangnya armada, atau kesalahan operasional.",
		Service:       "Masalah ini mencerminkan ketidakpuasan pelanggan terhadap layanan di Gudang terkait.",
		Communication: "Masalah ini menunjukkan adanya kebutuhan untuk meningkatkan keterampilan komunikasi kurir dan sistem pelacakan pengiriman.",
	},
	English: {
		Delay:         "This points to problems in delivery time management, caused by suboptimal routes, a shortage of vehicles, or operational mistakes.",
		Service:       "This reflects customer dissatisfaction with the service at the warehouse concerned.",
		Communication: "This shows a need to improve courier communication skills and the shipment tracking system.",
	},
}

// Conjunction returns the final-list connective for lang.
func Conjunction(lang Language) string {
	if c, ok := conjunctions[lang]; ok {
		return c
	}
	return conjunctions[Indonesian]
}

// Diagnosis builds the word-cloud sentence naming the dominant category's
// problem and the most common words. It returns "" when there is no
// ranked insight or the set has no words.
func Diagnosis(insights []Insight, set []reviews.Review, lang Language) string {
	if len(insights) == 0 {
		return ""
	}
	words := CommonWords(set, DefaultCommonWords)
	if len(words) == 0 {
		return ""
	}
	if _, ok := diagnosisTemplates[lang]; !ok {
		lang = Indonesian
	}
	top := insights[0].Category
	return fmt.Sprintf(diagnosisTemplates[lang],
		problems[lang][top], JoinWords(words, Conjunction(lang)), followUps[lang][top])
}

var adviceBlocks = map[Language]map[Category]string{
	Indonesian: {
		Delay: `**Identifikasi Akar Permasalahan pada Keterlambatan Pengiriman:**

- Analisis alur logistik untuk menemukan bottleneck, seperti pengelolaan rute, kapasitas armada, atau penjadwalan.
- Terapkan teknologi optimasi rute (misalnya, sistem berbasis GPS) dan tingkatkan transparansi dengan sistem pelacakan real-time.
`,
		Service: `**Tingkatkan Kualitas Pelayanan di Gudang:**

- Lakukan pelatihan intensif untuk staf gudang mengenai standar operasional dan pelayanan pelanggan.
- Evaluasi fasilitas gudang untuk memastikan proses penyortiran dan pemrosesan barang berjalan efisien.
`,
		Communication: `**Perbaiki Sistem dan Komunikasi Kurir:**

- Terapkan sistem penjadwalan komunikasi otomatis, seperti notifikasi melalui aplikasi, SMS, atau email yang memberi tahu status pengiriman.
- Adakan pelatihan rutin kepada kurir tentang layanan pelanggan dan penanganan barang yang baik.
- Sediakan feedback system khusus untuk kurir, sehingga pelanggan dapat melaporkan masalah dengan lebih mudah.
`,
	},
	English: {
		Delay: `**Find the root causes of late deliveries:**

- Analyse the logistics flow to find bottlenecks such as route management, fleet capacity, or scheduling.
- Adopt route optimisation (for example GPS-based systems) and improve transparency with real-time tracking.
`,
		Service: `**Improve warehouse service quality:**

- Run intensive training for warehouse staff on operating standards and customer service.
- Review warehouse facilities so that sorting and parcel processing run efficiently.
`,
		Communication: `**Fix courier systems and communication:**

- Automate shipment status notifications through the app, SMS, or email.
- Train couriers regularly on customer service and careful parcel handling.
- Provide a courier-specific feedback channel so customers can report problems easily.
`,
	},
}

var closingAdvice = map[Language]string{
	Indonesian: `**Monitoring dan Evaluasi Secara Berkala:**

- Lakukan audit performa gudang dan kurir berdasarkan wilayah untuk memastikan konsistensi layanan.
- Adakan survei kepuasan pelanggan setelah setiap pengiriman untuk mendapatkan masukan langsung.

Dengan langkah-langkah tersebut, diharapkan perusahaan dapat meningkatkan efisiensi operasional, memperbaiki pengalaman pelanggan, dan memperkuat reputasi sebagai layanan ekspedisi yang andal dan memuaskan.
`,
	English: `**Monitor and evaluate regularly:**

- Audit warehouse and courier performance per region to keep service consistent.
- Survey customer satisfaction after every delivery to get direct feedback.

With these steps the company can improve operational efficiency and customer experience, and strengthen its reputation as a reliable courier service.
`,
}

// Advice returns markdown advisory blocks for every category whose topics
// appear in dist, in canonical order, followed by the closing block. An
// empty distribution yields no advice.
func Advice(dist Distribution, cats CategoryMap, lang Language) []string {
	if len(dist) == 0 {
		return []string{}
	}
	if _, ok := adviceBlocks[lang]; !ok {
		lang = Indonesian
	}
	present := make(map[Category]bool)
	for _, tc := range dist {
		if c, ok := cats[tc.Topic]; ok && tc.Count > 0 {
			present[c] = true
		}
	}

	var out []string
	for _, c := range Categories {
		if present[c] {
			out = append(out, adviceBlocks[lang][c])
		}
	}
	return append(out, closingAdvice[lang])
}
