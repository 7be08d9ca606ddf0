package normalizer

// DefaultTable returns the built-in Hindi/Hinglish transliteration table.
// Every canonical token also maps to itself so the output is a fixed point.
func DefaultTable() []Entry {
	return []Entry{
		{"paani", "water"},
		{"gaddha", "pothole"},
		{"sadak", "road"},
		{"bijli", "electricity"},
		{"light", "streetlight"},
		{"kooda", "garbage"},
		{"dustbin", "dustbin"},
		{"fire", "fire"},
		{"aag", "fire"},
		{"smoke", "smoke"},
		{"dhuan", "smoke"},
		{"noise", "noise"},
		{"shor", "noise"},
		{"pollution", "pollution"},
		{"pradushan", "pollution"},
		{"dirty", "dirty"},
		{"ganda", "dirty"},
		{"clean", "clean"},
		{"saf", "clean"},
		{"broken", "broken"},
		{"tuta", "broken"},
		{"damaged", "damaged"},
		{"kharab", "damaged"},
		{"fixed", "fixed"},
		{"theek", "fixed"},
		{"urgent", "urgent"},
		{"jaldi", "urgent"},
		{"important", "important"},
		{"mahatvapurn", "important"},
		{"problem", "problem"},
		{"samasya", "problem"},
		{"issue", "issue"},
		{"complaint", "complaint"},
		{"shikayat", "complaint"},
		{"help", "help"},
		{"madad", "help"},
		{"support", "support"},
		{"sahayata", "support"},
	}
}
