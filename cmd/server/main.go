package main

import "verimail/internal/app"

// @title        verimail API
// @version      1.0
// @description  Multi-tenant email verification and dispatch service.
// @BasePath     /api

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	app.Run()
}
