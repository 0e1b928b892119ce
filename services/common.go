package services

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strings"

	"mealtracker-go-worker/models"
)

func HttpRequest(method, url string, header map[string]string, data interface{}) ([]byte, error) {

	var requestBody []byte
	var err error
	var req *http.Request

	// 序列化參數
	if data != nil {
		if requestBody, err = json.Marshal(data); err != nil {
			return nil, err
		}
		if req, err = http.NewRequest(method, url, bytes.NewBuffer(requestBody)); err != nil {
			return nil, err
		}
	} else {
		if req, err = http.NewRequest(method, url, nil); err != nil {
			return nil, err
		}
	}

	client := &http.Client{}

	req.Header.Set("Content-Type", "application/json")
	if header != nil {
		for key, element := range header {
			req.Header.Set(key, element)
		}
	}
	if resp, err := client.Do(req); err != nil {
		return nil, err
	} else {
		defer resp.Body.Close()
		if body, err := ioutil.ReadAll(resp.Body); err != nil {
			return nil, err
		} else {
			return body, nil
		}
	}
}

// FilterMealsByName 搜尋字串為空白時原封不動回傳，
// 否則保留名稱包含搜尋字串的項目（不分大小寫、維持原本順序）
func FilterMealsByName(meals []models.Meal, query string) []models.Meal {
	if strings.TrimSpace(query) == "" {
		return meals
	}
	lower := strings.ToLower(query)
	filtered := []models.Meal{}
	for _, meal := range meals {
		if strings.Contains(strings.ToLower(meal.Name), lower) {
			filtered = append(filtered, meal)
		}
	}
	return filtered
}
