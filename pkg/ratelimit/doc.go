// Package ratelimit paces the crawl loop.
//
// FixedDelay applies the same pause between successive listing pages. The
// pause is interruptible through the context passed to Wait, so a cancelled
// run stops at the next page boundary instead of sleeping it out.
//
//	pacer := ratelimit.NewFixedDelay(cfg.Crawl.PageDelay)
//	if err := pacer.Wait(ctx); err != nil {
//		return err
//	}
package ratelimit
