package i18n

type Key int

const (
	Title Key = iota
	LatestPatch
	PatchArchive
	LatestDataFor
	ArchiveDataFor
	ArchiveListLoading
	ArchiveSelectPrompt
	ArchiveNotFound
	PatchLoading
	ErrorLoadingLatest
	ErrorLoadingList
	ErrorLoadingArchive
	ImpactScore
	ImpactLow
	ImpactMedium
	ImpactHigh
	Buffs
	Nerfs
	NewContent
	Fixes
	Other
	NoChanges
	NoDetails
	NoInfo
	RawJSON
	Statistics
	StatsLoading
	StatsError
	TotalRequests
	TotalErrors
	MostPopular
	RequestsByGame
	NoStats
	StreamDisconnected
	Help
)

var tables = map[Lang]map[Key]string{
	EN: {
		Title:               "🎮 Game Patch Notes Intelligence",
		LatestPatch:         "Latest Patch",
		PatchArchive:        "Patch Archive",
		LatestDataFor:       "Latest Data for",
		ArchiveDataFor:      "Archive Data for",
		ArchiveListLoading:  "Loading archive list...",
		ArchiveSelectPrompt: "Select an archive entry and press enter",
		ArchiveNotFound:     "No archive records found for this game yet.",
		PatchLoading:        "Loading patch data...",
		ErrorLoadingLatest:  "Failed to fetch latest data:",
		ErrorLoadingList:    "Failed to fetch archive list:",
		ErrorLoadingArchive: "Failed to fetch archived data:",
		ImpactScore:         "Patch Impact Score:",
		ImpactLow:           "Low",
		ImpactMedium:        "Medium",
		ImpactHigh:          "High",
		Buffs:               "🟢 Buffs",
		Nerfs:               "🔴 Nerfs",
		NewContent:          "✨ New Content/Changes",
		Fixes:               "🔧 Bug Fixes",
		Other:               "📋 Other Changes",
		NoChanges:           "Analysis complete, but no significant changes were found.",
		NoDetails:           "No details available",
		NoInfo:              "No info",
		RawJSON:             "Raw JSON Output",
		Statistics:          "📊 Usage Statistics",
		StatsLoading:        "Loading statistics...",
		StatsError:          "Failed to fetch statistics:",
		TotalRequests:       "Total Requests Analyzed:",
		TotalErrors:         "Total Errors:",
		MostPopular:         "Most Popular Game:",
		RequestsByGame:      "Requests per Game:",
		NoStats:             "Not enough statistics data yet.",
		StreamDisconnected:  "live updates disconnected",
		Help:                "←/→ game │ tab mode │ ↑/↓ archive │ enter open │ esc back │ l lang │ J json │ r refresh │ q quit",
	},
	TR: {
		Title:               "🎮 Oyun Yama Notları Analizi",
		LatestPatch:         "Son Güncel Yama",
		PatchArchive:        "Geçmiş Yamalar (Arşiv)",
		LatestDataFor:       "için Son Veri",
		ArchiveDataFor:      "için Geçmiş Veri",
		ArchiveListLoading:  "Arşiv listesi yükleniyor...",
		ArchiveSelectPrompt: "Bir arşiv kaydı seçip enter'a basın",
		ArchiveNotFound:     "Bu oyun için henüz bir arşiv kaydı bulunamadı.",
		PatchLoading:        "Yama verisi yükleniyor...",
		ErrorLoadingLatest:  "Güncel veri çekilemedi:",
		ErrorLoadingList:    "Arşiv listesi çekilemedi:",
		ErrorLoadingArchive: "Arşivlenmiş veri çekilemedi:",
		ImpactScore:         "Yama Etki Skoru:",
		ImpactLow:           "Küçük",
		ImpactMedium:        "Orta",
		ImpactHigh:          "Büyük",
		Buffs:               "🟢 Güçlendirmeler (Buffs)",
		Nerfs:               "🔴 Zayıflatmalar (Nerfs)",
		NewContent:          "✨ Yeni İçerik/Değişiklikler",
		Fixes:               "🔧 Hata Düzeltmeleri (Fixes)",
		Other:               "📋 Diğer Değişiklikler",
		NoChanges:           "Analiz tamamlandı ancak raporlanacak önemli değişiklik bulunamadı.",
		NoDetails:           "Detay yok",
		NoInfo:              "Bilgi Yok",
		RawJSON:             "Ham JSON Çıktısı",
		Statistics:          "📊 Kullanım İstatistikleri",
		StatsLoading:        "İstatistikler yükleniyor...",
		StatsError:          "İstatistikler çekilemedi:",
		TotalRequests:       "Toplam Analiz Edilen İstek:",
		TotalErrors:         "Toplam Hata:",
		MostPopular:         "En Popüler Oyun:",
		RequestsByGame:      "Oyuna Göre İstek Sayıları:",
		NoStats:             "Henüz yeterli istatistik verisi yok.",
		StreamDisconnected:  "canlı güncellemeler kesildi",
		Help:                "←/→ oyun │ tab mod │ ↑/↓ arşiv │ enter aç │ esc geri │ l dil │ J json │ r yenile │ q çık",
	},
}

// T looks up a UI string. Unknown languages use English.
func T(lang Lang, k Key) string {
	if tbl, ok := tables[lang]; ok {
		if s, ok := tbl[k]; ok {
			return s
		}
	}
	return tables[EN][k]
}

// Heading builds the section heading for a game. Turkish puts the game
// name first ("Valorant için Son Veri").
func Heading(lang Lang, k Key, gameName string) string {
	if lang == TR {
		return gameName + " " + T(lang, k)
	}
	return T(lang, k) + " " + gameName
}
