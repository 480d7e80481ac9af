package services

import (
	"strings"

	"market-scout/models"
)

// categoryRule pairs a category with the keywords that select it. The rules
// are evaluated in slice order and the first hit wins: "amd" appears under
// both cpu and gpu, so an ambiguous AMD listing always resolves to cpu.
type categoryRule struct {
	category models.Category
	keywords []string
}

var categoryRules = []categoryRule{
	{models.CategoryCPU, []string{"cpu", "processor", "מעבד", "intel", "amd", "ryzen", "core"}},
	{models.CategoryGPU, []string{"gpu", "graphics", "video card", "כרטיס מסך", "nvidia", "amd", "rtx", "gtx"}},
	{models.CategoryMotherboard, []string{"motherboard", "לוח אם", "mobo", "mb"}},
	{models.CategoryRAM, []string{"ram", "memory", "זיכרון", "ddr4", "ddr5", "gb"}},
	{models.CategoryStorage, []string{"ssd", "hdd", "storage", "אחסון", "hard drive", "nvme"}},
	{models.CategoryPSU, []string{"psu", "power supply", "ספק כוח", "power"}},
	{models.CategoryCooling, []string{"cooling", "cooler", "fan", "קירור", "radiator"}},
	{models.CategoryCase, []string{"case", "chassis", "מארז", "tower"}},
	{models.CategoryCompleteBuild, []string{"מחשב", "computer", "pc", "build", "מורכב"}},
}

// conditionRule works the same way for seller-claimed condition text.
type conditionRule struct {
	condition models.Condition
	keywords  []string
}

var conditionRules = []conditionRule{
	{models.ConditionNew, []string{"חדש", "new", "brand new"}},
	{models.ConditionLikeNew, []string{"כמו חדש", "like new", "excellent"}},
	{models.ConditionExcellent, []string{"מצוין", "excellent"}},
	{models.ConditionGood, []string{"טוב", "good"}},
	{models.ConditionFair, []string{"סביר", "fair", "average"}},
	{models.ConditionPoor, []string{"גרוע", "poor", "bad"}},
	{models.ConditionForParts, []string{"חלקים", "parts", "broken"}},
}

// CategorizeProduct maps a listing's title and description to a product
// category via ordered keyword matching. Returns CategoryOther when nothing
// matches, including on empty text.
func CategorizeProduct(title, description string) models.Category {
	text := strings.ToLower(title + " " + description)

	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryOther
}

// NormalizeCondition maps free-text condition wording (Hebrew or English) to
// the closed Condition set, defaulting to good.
func NormalizeCondition(text string) models.Condition {
	if text == "" {
		return models.ConditionGood
	}

	lower := strings.ToLower(text)
	for _, rule := range conditionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.condition
			}
		}
	}
	return models.ConditionGood
}
