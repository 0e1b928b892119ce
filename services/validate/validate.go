package validate

import (
	"strings"

	"mealtracker-go-worker/structs"
)

// MealDetailsValid 草稿可以存檔的條件：
// name 與 description 非空白、calories 不為 0。
// image 可以留空（相機/相簿取得的參照是選填的）
func MealDetailsValid(details structs.MealDetails) bool {
	return strings.TrimSpace(details.Name) != "" &&
		strings.TrimSpace(details.Description) != "" &&
		details.Calories != 0
}
