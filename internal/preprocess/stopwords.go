package preprocess

var indonesianStopwords = []string{
	"ada", "adalah", "agar", "akan", "aku", "anda", "apa", "atau", "bagi",
	"bahwa", "banget", "belum", "beliau", "biar", "bisa", "buat", "dan",
	"dari", "dengan", "di", "dia", "dong", "gak", "ga", "hal", "hanya",
	"harus", "ini", "itu", "jadi", "juga", "kah", "kalau", "kami", "kamu",
	"kan", "karena", "ke", "kita", "krn", "lah", "lalu", "masih", "mereka",
	"nya", "oleh", "pada", "para", "pun", "saja", "saya", "sih", "sudah",
	"tapi", "telah", "tersebut", "untuk", "yang", "yg", "dgn",
	"tdk", "udah", "aja", "deh", "nih", "tuh", "pas", "the", "and", "is",
}
