package risk

// Geological narrative zone boxes. These differ from the slope zones in
// internal/region: the narrative only cares about the broad hazard areas.
func inMerapiHazardZone(lat, lng float64) bool {
	return lat > -7.60 && lng > 110.42
}

func inBaturagungZone(lat, lng float64) bool {
	return lat < -8.05 && lng > 110.45
}

func inMenorehZone(lng float64) bool {
	return lng < 110.25
}

// Narrative produces the human-readable geological advisory for a scored
// point: a level-specific opening, zone- or terrain-specific detail, and a
// recommendation clause. Text is presentation output, in Indonesian.
func Narrative(level Level, slope, elevation, lat, lng float64) string {
	switch level {
	case LevelHigh:
		switch {
		case inMerapiHazardZone(lat, lng):
			return "ZONA RAWAN TINGGI - Lereng Merapi aktif. Evakuasi saat hujan deras, jauhi lembah sungai. Rekomendasi: Pemantauan intensif dan sistem peringatan dini."
		case inBaturagungZone(lat, lng):
			return "ZONA RAWAN TINGGI - Pegunungan Baturagung dengan batuan kapur rawan longsor. Hindari tebing curam saat hujan. Rekomendasi: Stabilisasi lereng dan drainase yang baik."
		case inMenorehZone(lng):
			return "ZONA RAWAN TINGGI - Perbukitan Menoreh dengan kondisi tanah labil. Rekomendasi: Penanaman vegetasi penguat lereng."
		}
		return "ZONA RAWAN TINGGI - Berdasarkan analisis data, area ini memiliki parameter risiko tinggi. Rekomendasi: Tindakan preventif segera dan pemantauan rutin."

	case LevelMedium:
		switch {
		case slope > 15:
			return "ZONA WASPADA - Kemiringan lahan cukup curam. Monitoring rutin diperlukan, terutama musim hujan. Rekomendasi: Evaluasi drainase dan vegetasi."
		case elevation > 200:
			return "ZONA WASPADA - Area elevasi sedang dengan potensi gerakan tanah. Rekomendasi: Pemantauan perubahan kondisi lereng."
		}
		return "ZONA WASPADA - Risiko sedang berdasarkan analisis. Rekomendasi: Evaluasi kondisi lahan secara berkala."
	}

	switch {
	case elevation < 100 && slope < 5:
		return "ZONA RELATIF AMAN - Dataran rendah dengan kemiringan landai. Risiko rendah, tetap waspada banjir."
	case elevation < 150:
		return "ZONA STABIL - Area dengan parameter relatif stabil. Tetap waspada perubahan kondisi saat hujan ekstrem."
	}
	return "ZONA AMAN - Analisis menunjukkan risiko rendah. Kondisi geologi relatif stabil."
}
