// @title         shortlist API
// @version       1.0
// @description   Сервис ранжирования кандидатов: сравнивает пачку резюме с описанием вакансии и формирует шорт-лист.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Токен авторизации. Поддерживаются форматы: "Bearer <JWT>" или "<JWT>".
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
