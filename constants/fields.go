package constants

import (
	"strings"
)

// CanonicalKey is the stable identifier of one measurement type.
type CanonicalKey string

const (
	Testosterone     CanonicalKey = "testosterone"
	FreeTestosterone CanonicalKey = "free_testosterone"
	Estradiol        CanonicalKey = "estradiol"
	Prolactin        CanonicalKey = "prolactin"
	LH               CanonicalKey = "lh"
	FSH              CanonicalKey = "fsh"
	SHBG             CanonicalKey = "shbg"
	Progesterone     CanonicalKey = "progesterone"
	DHEAS            CanonicalKey = "dhea_s"
	Cortisol         CanonicalKey = "cortisol"
	IGF1             CanonicalKey = "igf1"
	TSH              CanonicalKey = "tsh"
	FreeT4           CanonicalKey = "free_t4"
	FreeT3           CanonicalKey = "free_t3"
	PSA              CanonicalKey = "psa"

	Glucose      CanonicalKey = "glucose"
	HbA1c        CanonicalKey = "hba1c"
	Insulin      CanonicalKey = "insulin"
	VitaminD     CanonicalKey = "vitamin_d"
	Ferritin     CanonicalKey = "ferritin"
	Iron         CanonicalKey = "iron"
	CRP          CanonicalKey = "crp"
	Homocysteine CanonicalKey = "homocysteine"

	Cholesterol       CanonicalKey = "cholesterol"
	NonHDLCholesterol CanonicalKey = "non_hdl_cholesterol"
	HDL               CanonicalKey = "hdl"
	LDL               CanonicalKey = "ldl"
	VLDL              CanonicalKey = "vldl"
	Triglycerides     CanonicalKey = "triglycerides"
	AtherogenicIndex  CanonicalKey = "atherogenic_index"

	ALT                 CanonicalKey = "alt"
	AST                 CanonicalKey = "ast"
	GGT                 CanonicalKey = "ggt"
	AlkalinePhosphatase CanonicalKey = "alkaline_phosphatase"
	BilirubinDirect     CanonicalKey = "bilirubin_direct"
	BilirubinTotal      CanonicalKey = "bilirubin_total"
	TotalProtein        CanonicalKey = "total_protein"
	Albumin             CanonicalKey = "albumin"
	Creatinine          CanonicalKey = "creatinine"
	Urea                CanonicalKey = "urea"
	UricAcid            CanonicalKey = "uric_acid"
	CreatineKinase      CanonicalKey = "creatine_kinase"
	Potassium           CanonicalKey = "potassium"
	Sodium              CanonicalKey = "sodium"
	Calcium             CanonicalKey = "calcium"

	Hemoglobin CanonicalKey = "hemoglobin"
	Hematocrit CanonicalKey = "hematocrit"
	RBC        CanonicalKey = "rbc"
	WBC        CanonicalKey = "wbc"
	Platelets  CanonicalKey = "platelets"
	ESR        CanonicalKey = "esr"
)

var allKeys = []CanonicalKey{
	Testosterone, FreeTestosterone, Estradiol, Prolactin, LH, FSH, SHBG, Progesterone,
	DHEAS, Cortisol, IGF1, TSH, FreeT4, FreeT3, PSA,
	Glucose, HbA1c, Insulin, VitaminD, Ferritin, Iron, CRP, Homocysteine,
	Cholesterol, NonHDLCholesterol, HDL, LDL, VLDL, Triglycerides, AtherogenicIndex,
	ALT, AST, GGT, AlkalinePhosphatase, BilirubinDirect, BilirubinTotal, TotalProtein, Albumin,
	Creatinine, Urea, UricAcid, CreatineKinase, Potassium, Sodium, Calcium,
	Hemoglobin, Hematocrit, RBC, WBC, Platelets, ESR,
}

// AllKeys returns every canonical key in a stable order.
func AllKeys() []CanonicalKey {
	out := make([]CanonicalKey, len(allKeys))
	copy(out, allKeys)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allKeys))
	for i, k := range allKeys {
		result[i] = string(k)
	}
	return result
}

// ParseKey resolves a key identifier such as "ALT" or " free_t4 ".
func ParseKey(input string) (CanonicalKey, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}
	for _, k := range allKeys {
		if normalized == string(k) {
			return k, true
		}
	}
	return "", false
}
