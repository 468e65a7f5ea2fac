// Package trackzero is a client for the TrackZero entity and event tracking API.
//
// Build entities and events with NewEntity and NewEvent, then send them with a
// Client:
//
//	c, err := trackzero.New(os.Getenv("TZ_API_KEY"))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	user, _ := trackzero.NewEntity("User", "87717c11")
//	user.AddAttribute("Name", "Sam Smith")
//
//	resp, err := c.UpsertEntity(ctx, user)
//	if err != nil {
//		log.Fatal(err) // invalid input, nothing was sent
//	}
//	if !resp.OK() {
//		log.Printf("upsert failed: %s", resp.ErrorMessage())
//	}
//
// Each call makes a single HTTP attempt with no retries. Programs that want a
// single shared client can use Initialize and Instance.
package trackzero
