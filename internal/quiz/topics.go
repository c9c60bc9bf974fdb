package quiz

import (
	"fmt"
	"strings"
)

// CertificateLevel is an NCC qualification tier. It is metadata only.
type CertificateLevel string

const (
	LevelA CertificateLevel = "A Certificate (JD/JW)"
	LevelB CertificateLevel = "B Certificate (SD/SW)"
	LevelC CertificateLevel = "C Certificate"
)

// Levels lists the certificate levels in ascending order.
var Levels = []CertificateLevel{LevelA, LevelB, LevelC}

// Short returns the single-letter form of the level.
func (l CertificateLevel) Short() string {
	switch l {
	case LevelA:
		return "A"
	case LevelB:
		return "B"
	case LevelC:
		return "C"
	}
	return ""
}

// ParseCertificateLevel accepts "A", "b", "C Certificate" and the full names.
func ParseCertificateLevel(s string) (CertificateLevel, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case v == "":
		return "", nil
	case v == "A" || strings.HasPrefix(v, "A CERT"):
		return LevelA, nil
	case v == "B" || strings.HasPrefix(v, "B CERT"):
		return LevelB, nil
	case v == "C" || strings.HasPrefix(v, "C CERT"):
		return LevelC, nil
	}
	return "", fmt.Errorf("unknown certificate level %q", s)
}

// Difficulty is the requested question difficulty.
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Difficulties lists the difficulty labels in ascending order.
var Difficulties = []Difficulty{Beginner, Intermediate, Advanced}

// ParseDifficulty accepts beginner/intermediate/advanced and easy/medium/hard.
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "beginner", "easy":
		return Beginner, nil
	case "intermediate", "medium":
		return Intermediate, nil
	case "advanced", "hard":
		return Advanced, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

var topicsByLevel = map[CertificateLevel][]string{
	LevelA: {
		"Drill and Commands",
		"First Aid Basics",
		"Map Reading Fundamentals",
		"NCC Organization and History",
		"Physical Training",
		"Basic Military Knowledge",
		"Discipline and Leadership",
		"National Integration",
	},
	LevelB: {
		"Advanced Drill Procedures",
		"Field Craft and Camping",
		"Weapon Training (Basic)",
		"Advanced First Aid",
		"Communication Methods",
		"Adventure Activities",
		"Service Knowledge",
		"Environmental Awareness",
		"Disaster Management",
		"Social Service",
	},
	LevelC: {
		"Military History and Strategy",
		"Advanced Weapon Training",
		"Leadership and Management",
		"Navigation and Orientation",
		"Advanced Field Craft",
		"Military Law and Ethics",
		"International Relations",
		"Defense Studies",
		"Civil Defense",
		"Career Guidance in Armed Forces",
	},
}

// DefaultCategories are the general study categories offered alongside the
// per-level topics.
var DefaultCategories = []string{
	"NCC Organization",
	"National Integration",
	"Foot Drill",
	"Weapon Training",
	"Leadership",
	"Disaster Management",
	"Social Service",
	"Health & Hygiene",
	"Adventure Activities",
	"Environment",
	"Self Defence",
}

// Topics returns a copy of the suggested topics for a certificate level.
func Topics(level CertificateLevel) []string {
	return append([]string(nil), topicsByLevel[level]...)
}

// Catalogue maps each certificate level to its suggested topics.
func Catalogue() map[CertificateLevel][]string {
	out := make(map[CertificateLevel][]string, len(topicsByLevel))
	for l := range topicsByLevel {
		out[l] = Topics(l)
	}
	return out
}
