// Package chrome implements platform.Browser on top of the Chrome DevTools
// Protocol via chromedp. Importing it registers the backend with
// platform.NewLauncherFunc.
package chrome
