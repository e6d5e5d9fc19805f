// Package search implements the concurrent file-search engine.
//
// A call to Search validates the request, matches the files directly under
// the root on the calling goroutine and then fans out one worker task per
// top-level subdirectory. Workers walk their subtree depth-first and offer
// matching files to a shared Sink, which drops duplicate paths and enforces
// the result cap. Reaching the cap, calling Session.Cancel or cancelling the
// context passed to Search sets the session's Token; workers check it before
// every entry and every descent and return on their own.
//
// Results are consumed lazily:
//
//	session, err := search.Search(ctx, models.SearchRequest{
//	    Root:    "/var/log",
//	    Pattern: "*.log",
//	    Options: models.Options{MaxResults: 100},
//	})
//	if err != nil {
//	    return err // *search.ValidationError
//	}
//	for m := range session.Results() {
//	    fmt.Println(m.Path)
//	}
//	if err := session.Wait(); err != nil {
//	    return err // scheduling failure; results above remain valid
//	}
//
// Leaving the range loop early cancels the session and waits for its
// workers before the loop statement completes.
package search
