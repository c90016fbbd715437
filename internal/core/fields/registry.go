package fields

import (
	"github.com/joseph-ayodele/labreport-import/constants"
	"github.com/joseph-ayodele/labreport-import/internal/core/ocr"
)

// Range is an inclusive plausibility window for a measurement.
type Range struct {
	Min float64
	Max float64
}

func (r Range) Contains(v float64) bool { return v >= r.Min && v <= r.Max }

// Field describes how one canonical key is named on a report.
//
// Patterns are tried in order; the first one that matches fixes where the
// name ends. Excludes veto a match when any of them occurs in the line.
// Range is nil for keys accepted without a bounds check.
type Field struct {
	Key      constants.CanonicalKey
	Label    string
	Patterns []string
	Excludes []string
	Range    *Range
}

func rng(min, max float64) *Range { return &Range{Min: min, Max: max} }

// Markers shared by exclusion lists.
var (
	nonHDLMarkers = []string{"не-лпвп", "не лпвп", "нелпвп", "non-hdl", "non hdl", "nonhdl"}
	meanMarkers   = []string{"средн", "mean ", "распредел", "ширина"}
)

// registry is ordered: narrower names precede the broader names that
// would otherwise match the same row.
var registry = []Field{
	// hormones
	{
		Key:      constants.FreeTestosterone,
		Label:    "Тестостерон свободный",
		Patterns: []string{"тестостерон свободный", "свободный тестостерон", "free testosterone", "testosterone free", "testosterone, free"},
		Range:    rng(0.001, 200),
	},
	{
		Key:      constants.Testosterone,
		Label:    "Тестостерон общий",
		Patterns: []string{"тестостерон", "testosterone"},
		Excludes: []string{"свобод", "free", "биодоступ", "bioavailable", "индекс"},
		Range:    rng(0.05, 60),
	},
	{
		Key:      constants.Estradiol,
		Label:    "Эстрадиол",
		Patterns: []string{"эстрадиол", "estradiol", "oestradiol", "e2"},
		Range:    rng(1, 5000),
	},
	{
		Key:      constants.Prolactin,
		Label:    "Пролактин",
		Patterns: []string{"пролактин", "prolactin", "prl"},
		Excludes: []string{"макропролактин", "macroprolactin"},
		Range:    rng(0.5, 10000),
	},
	{
		Key:      constants.LH,
		Label:    "ЛГ",
		Patterns: []string{"лютеинизирующий", "luteinizing hormone", "лг", "lh"},
		Range:    rng(0.05, 200),
	},
	{
		Key:      constants.FSH,
		Label:    "ФСГ",
		Patterns: []string{"фолликулостимулирующий", "follicle stimulating", "follicle-stimulating", "фсг", "fsh"},
		Range:    rng(0.05, 200),
	},
	{
		Key:      constants.SHBG,
		Label:    "ГСПГ",
		Patterns: []string{"связывающий половые", "половые гормоны", "sex hormone binding", "sex hormone-binding", "гспг", "shbg"},
		Range:    rng(1, 300),
	},
	{
		Key:      constants.DHEAS,
		Label:    "ДГЭА-С",
		Patterns: []string{"дгэа-сульфат", "дгэа-с", "дгэа с", "дэа-с", "дегидроэпиандростерон", "dhea-so4", "dhea-s", "dhea sulfate", "dheas"},
		Range:    rng(0.1, 1500),
	},
	{
		Key:      constants.Progesterone,
		Label:    "Прогестерон",
		Patterns: []string{"прогестерон", "progesterone"},
		Excludes: []string{"гидроксипрогестерон", "hydroxyprogesterone", "17-он", "17-oh", "17 oh"},
		Range:    rng(0.05, 300),
	},
	{
		Key:      constants.Cortisol,
		Label:    "Кортизол",
		Patterns: []string{"кортизол", "cortisol"},
		Range:    rng(0.5, 2000),
	},
	{
		Key:      constants.IGF1,
		Label:    "ИФР-1",
		Patterns: []string{"инсулиноподобный", "соматомедин", "insulin-like growth", "insulin like growth", "ифр-1", "ифр 1", "igf-1", "igf 1", "igf1", "ифр"},
		Range:    rng(5, 1500),
	},
	{
		Key:      constants.TSH,
		Label:    "ТТГ",
		Patterns: []string{"тиреотропный", "thyroid stimulating", "thyroid-stimulating", "ттг", "tsh"},
		Range:    rng(0.001, 150),
	},
	{
		Key:      constants.FreeT4,
		Label:    "Т4 свободный",
		Patterns: []string{"т4 свободный", "свободный т4", "т4 св", "т4св", "тироксин свободный", "свободный тироксин", "free t4", "ft4", "t4 free"},
		Range:    rng(0.1, 100),
	},
	{
		Key:      constants.FreeT3,
		Label:    "Т3 свободный",
		Patterns: []string{"т3 свободный", "свободный т3", "т3 св", "т3св", "трийодтиронин свободный", "свободный трийодтиронин", "free t3", "ft3", "t3 free"},
		Range:    rng(0.1, 50),
	},
	{
		Key:      constants.PSA,
		Label:    "ПСА общий",
		Patterns: []string{"простатспецифический", "простат-специфический", "простатический специфический", "prostate specific", "prostate-specific", "пса", "psa"},
		Excludes: []string{"свобод", "free", "соотношение", "ratio"},
		Range:    rng(0.001, 200),
	},

	// metabolic, iron, inflammation
	{
		Key:      constants.HbA1c,
		Label:    "Гликированный гемоглобин",
		Patterns: []string{"гликированный", "гликозилированный", "glycated", "hba1c", "hb a1c", "a1c"},
		Range:    rng(2, 20),
	},
	{
		Key:      constants.Glucose,
		Label:    "Глюкоза",
		Patterns: []string{"глюкоза", "glucose", "glu"},
		Excludes: []string{"толерантн", "tolerance"},
		Range:    rng(1, 35),
	},
	{
		Key:      constants.Insulin,
		Label:    "Инсулин",
		Patterns: []string{"инсулин", "insulin"},
		Excludes: []string{"инсулиноподоб", "insulin-like", "insulin like", "антитела", "antibod"},
		Range:    rng(0.1, 500),
	},
	{
		Key:      constants.VitaminD,
		Label:    "Витамин D",
		Patterns: []string{"витамин d", "витамин д", "vitamin d", "25-он", "25-oh", "25(oh)", "25 (oh)", "кальцидиол", "calcidiol"},
		Range:    rng(2, 375),
	},
	{
		Key:      constants.Ferritin,
		Label:    "Ферритин",
		Patterns: []string{"ферритин", "ferritin"},
		Range:    rng(1, 3000),
	},
	{
		Key:      constants.Iron,
		Label:    "Железо",
		Patterns: []string{"железо сыворотки", "сывороточное железо", "железо", "serum iron", "iron", "fe"},
		Excludes: []string{"железосвязывающ", "binding", "жсс", "tibc", "ферритин"},
		Range:    rng(1, 100),
	},
	{
		Key:      constants.CRP,
		Label:    "СРБ",
		Patterns: []string{"реактивный белок", "c-reactive", "c reactive", "срб", "crp"},
		Range:    rng(0.01, 500),
	},
	{
		Key:      constants.Homocysteine,
		Label:    "Гомоцистеин",
		Patterns: []string{"гомоцистеин", "homocysteine"},
		Range:    rng(1, 100),
	},

	// lipids
	{
		Key:      constants.NonHDLCholesterol,
		Label:    "Холестерин не-ЛПВП",
		Patterns: nonHDLMarkers,
		Excludes: []string{"общий", "total"},
		Range:    rng(0.5, 18),
	},
	{
		Key:      constants.VLDL,
		Label:    "ЛПОНП",
		Patterns: []string{"очень низкой плотности", "лпонп", "vldl"},
		Range:    rng(0.05, 5),
	},
	{
		Key:      constants.HDL,
		Label:    "ЛПВП",
		Patterns: []string{"высокой плотности", "лпвп", "hdl"},
		Excludes: nonHDLMarkers,
		Range:    rng(0.1, 5),
	},
	{
		Key:      constants.LDL,
		Label:    "ЛПНП",
		Patterns: []string{"низкой плотности", "лпнп", "ldl"},
		Excludes: []string{"очень низкой", "лпонп", "vldl"},
		Range:    rng(0.1, 15),
	},
	{
		Key:      constants.AtherogenicIndex,
		Label:    "Индекс атерогенности",
		Patterns: []string{"атерогенн", "atherogenic"},
	},
	{
		Key:      constants.Cholesterol,
		Label:    "Холестерин общий",
		Patterns: []string{"холестерин общий", "общий холестерин", "холестерин", "cholesterol total", "total cholesterol", "cholesterol"},
		Excludes: append([]string{"лпвп", "лпнп", "лпонп", "hdl", "ldl", "vldl", "плотности", "атероген"}, nonHDLMarkers...),
		Range:    rng(1, 20),
	},
	{
		Key:      constants.Triglycerides,
		Label:    "Триглицериды",
		Patterns: []string{"триглицерид", "triglycerid"},
		Range:    rng(0.1, 30),
	},

	// chemistry
	{
		Key:      constants.ALT,
		Label:    "АЛТ",
		Patterns: []string{"аланинаминотрансфераза", "аланиновая", "alanine aminotransferase", "алат", "алт", "alt"},
		Range:    rng(1, 3000),
	},
	{
		Key:      constants.AST,
		Label:    "АСТ",
		Patterns: []string{"аспартатаминотрансфераза", "аспарагиновая", "aspartate aminotransferase", "асат", "аст", "ast"},
		Range:    rng(1, 3000),
	},
	{
		Key:      constants.GGT,
		Label:    "ГГТ",
		Patterns: []string{"гамма-глутамилтрансфераза", "гамма-глутамилтранспептидаза", "гаммаглутамил", "гамма-гт", "gamma-glutamyl", "ггт", "ggt"},
		Range:    rng(1, 3000),
	},
	{
		Key:      constants.AlkalinePhosphatase,
		Label:    "Щелочная фосфатаза",
		Patterns: []string{"щелочная фосфатаза", "alkaline phosphatase", "щф", "alp"},
		Range:    rng(10, 3000),
	},
	{
		Key:      constants.BilirubinDirect,
		Label:    "Билирубин прямой",
		Patterns: []string{"билирубин прямой", "прямой билирубин", "билирубин связанный", "direct bilirubin", "bilirubin direct", "bilirubin, direct"},
		Excludes: []string{"непрямой", "indirect"},
		Range:    rng(0.1, 300),
	},
	{
		Key:      constants.BilirubinTotal,
		Label:    "Билирубин общий",
		Patterns: []string{"билирубин общий", "общий билирубин", "билирубин", "total bilirubin", "bilirubin"},
		Excludes: []string{"прямой", "непрямой", "связанный", "свободный", "direct", "indirect"},
		Range:    rng(1, 500),
	},
	{
		Key:      constants.TotalProtein,
		Label:    "Общий белок",
		Patterns: []string{"общий белок", "белок общий", "total protein", "protein total"},
		Range:    rng(30, 120),
	},
	{
		Key:      constants.Albumin,
		Label:    "Альбумин",
		Patterns: []string{"альбумин", "albumin"},
		Excludes: []string{"микроальбумин", "microalbumin", "преальбумин", "prealbumin"},
		Range:    rng(10, 60),
	},
	{
		Key:      constants.CreatineKinase,
		Label:    "Креатинкиназа",
		Patterns: []string{"креатинкиназа", "креатинфосфокиназа", "creatine kinase", "кфк", "cpk", "ck"},
		Excludes: []string{"-мв", "-mb", " мв", " mb"},
		Range:    rng(5, 50000),
	},
	{
		Key:      constants.Creatinine,
		Label:    "Креатинин",
		Patterns: []string{"креатинин", "creatinine"},
		Excludes: []string{"клиренс", "clearance"},
		Range:    rng(10, 1500),
	},
	{
		Key:      constants.UricAcid,
		Label:    "Мочевая кислота",
		Patterns: []string{"мочевая кислота", "uric acid"},
		Range:    rng(50, 1000),
	},
	{
		Key:      constants.Urea,
		Label:    "Мочевина",
		Patterns: []string{"мочевина", "urea"},
		Range:    rng(0.5, 60),
	},
	{
		Key:      constants.Potassium,
		Label:    "Калий",
		Patterns: []string{"калий", "potassium"},
		Range:    rng(1.5, 9),
	},
	{
		Key:      constants.Sodium,
		Label:    "Натрий",
		Patterns: []string{"натрий", "sodium"},
		Range:    rng(100, 180),
	},
	{
		Key:      constants.Calcium,
		Label:    "Кальций",
		Patterns: []string{"кальций общий", "кальций", "calcium"},
		Excludes: []string{"ионизир", "ionized", "ионы"},
		Range:    rng(1, 4),
	},

	// complete blood count
	{
		Key:      constants.ESR,
		Label:    "СОЭ",
		Patterns: []string{"скорость оседания", "sedimentation rate", "соэ", "esr"},
		Range:    rng(0, 150),
	},
	{
		Key:      constants.Hematocrit,
		Label:    "Гематокрит",
		Patterns: []string{"гематокрит", "hematocrit", "haematocrit", "hct"},
		Range:    rng(10, 70),
	},
	{
		Key:      constants.Hemoglobin,
		Label:    "Гемоглобин",
		Patterns: []string{"гемоглобин", "hemoglobin", "haemoglobin", "hgb", "hb"},
		Excludes: append([]string{"гликир", "гликозил", "glycated", "a1c", "эритроците", "концентрац"}, meanMarkers...),
		Range:    rng(30, 250),
	},
	{
		Key:      constants.RBC,
		Label:    "Эритроциты",
		Patterns: []string{"эритроциты", "эритроцитов", "эритроцит", "red blood cells", "rbc"},
		Excludes: append([]string{"оседан", "гемоглобин", "моч", "nrbc"}, meanMarkers...),
		Range:    rng(1, 9),
	},
	{
		Key:      constants.WBC,
		Label:    "Лейкоциты",
		Patterns: []string{"лейкоциты", "лейкоцитов", "лейкоцит", "white blood cells", "wbc"},
		Excludes: []string{"моч", "формул"},
		Range:    rng(0.5, 100),
	},
	{
		Key:      constants.Platelets,
		Label:    "Тромбоциты",
		Patterns: []string{"тромбоциты", "тромбоцитов", "тромбоцит", "platelets", "platelet", "plt"},
		Excludes: append([]string{"тромбокрит", "агрегац"}, meanMarkers...),
		Range:    rng(5, 1500),
	},
}

var byKey = func() map[constants.CanonicalKey]*Field {
	m := make(map[constants.CanonicalKey]*Field, len(registry))
	for i := range registry {
		f := &registry[i]
		for j, p := range f.Patterns {
			f.Patterns[j] = ocr.NormalizeLabel(p)
		}
		for j, p := range f.Excludes {
			f.Excludes[j] = ocr.NormalizeLabel(p)
		}
		m[f.Key] = f
	}
	return m
}()

// Fields returns the registry in match order. Callers must not modify it.
func Fields() []Field { return registry }

// Lookup returns the field registered under key.
func Lookup(key constants.CanonicalKey) (Field, bool) {
	f, ok := byKey[key]
	if !ok {
		return Field{}, false
	}
	return *f, true
}

// LabelOf returns a display label for key, falling back to the key itself.
func LabelOf(key constants.CanonicalKey) string {
	if f, ok := byKey[key]; ok {
		return f.Label
	}
	return string(key)
}
