package printing

import (
	"fmt"
	"os"
)

func report(name string) string {
	fmt.Println("hello", name)    // want "use the logger instead of fmt.Println"
	fmt.Printf("hello %s\n", name) // want "use the logger instead of fmt.Printf"
	println(name)                  // want "use the logger instead of println"

	fmt.Fprintln(os.Stderr, name)

	return fmt.Sprintf("hello %s", name)
}
