// Command nutrictl is the operator CLI for NutriDash
package main

func main() {
	Execute()
}
