package arbor_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/pkg/domain"
)

// ExampleNew shows the request cycle a transport drives: the first request
// starts a session and is redirected to its initial page, which is then rendered.
func ExampleNew() {
	app, err := arbor.New(demo.Root)
	if err != nil {
		log.Fatal(err)
	}
	defer app.Close()

	ctx := context.Background()
	start := app.Handle(ctx, domain.Request{})
	fmt.Println(start.Kind, start.PageID)

	page := app.Handle(ctx, domain.Request{SessionID: start.SessionID, PageID: start.PageID})
	fmt.Println(page.Kind, page.PageID)
	fmt.Print(string(page.Body))

	// Output:
	// redirect 0
	// render 1
	// app
	//   Hello
	//   input token="v1" name="name" value=""
	//   counter
	//     0
	//     action token="a2" label="++"
	//     action token="a3" label="--"
	//   action token="a4" label="reset"
	//   footer resets="0"
}
