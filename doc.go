/*
Package botdriver drives a real browser for bots and scrapers that need a page
after its scripts have run.

A Session wraps one WebDriver session, either against a local chromedriver or
geckodriver that it starts itself, or against a remote Selenium endpoint. It
offers the handful of operations a bot needs: CSS queries that treat absence
as an empty result, clicks, typing, scrolling, page source of the live DOM and
cookie transfer between sessions.

Example usage:

	s, err := botdriver.NewLocal("/usr/local/bin/chromedriver", 1920, 1080,
		[]string{"--headless"}, botdriver.Seconds(30))
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.NavigateTo("https://www.flickr.com/explore"); err != nil {
		return err
	}
	links, err := s.Attributes("a.overlay", "")
	if err != nil {
		return err
	}
	for _, l := range links {
		fmt.Println(l)
	}

Sessions may also be described in YAML and opened with LoadConfig and
Config.Open. The internal/download package and the fetchdrivers command fetch
matching driver binaries.
*/
package botdriver
