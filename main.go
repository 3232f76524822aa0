package main

import "budget/cmd"

// @title 预算账本 API
// @version 1.0
// @description 多级收支类别、账户流水、月度预算与年度余额预测
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cmd.Execute()
}
