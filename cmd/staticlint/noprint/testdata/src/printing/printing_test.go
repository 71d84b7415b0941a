package printing

import "fmt"

func Example_report() {
	fmt.Println(report("world"))
}
