package main

import (
	"flag"

	"github.com/robotalks/cino.go/pkg/cino"
	"github.com/robotalks/cino.go/pkg/cino/env"
)

func init() {
	env.SetupFlags()
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func main() {
	flag.Parse()
	cino.SetDefault(env.NewConfig().MustNewReporter())

	cino.Plan(4)
	x := 2
	cino.Require(x+2 == 4)
	cino.Check(gcd(12, 18) == 6)
	cino.Check(gcd(7, 5) == 1)
	cino.Require(gcd(0, 9) == 9)
	cino.Done()
}
