package usecase

// User-facing replies. The chat UI keys off msgLearnPrompt's
// "Should I learn this?" to start the learn flow.
const (
	msgCouldNotUnderstand = "I couldn't understand your message."
	msgLearnPrompt        = "I don't know the answer to that. Should I learn this? Please respond with 'yes' or 'no'."
	msgWeatherPrompt      = "Please provide a location for the weather."

	msgWeatherNoLocation   = "Please provide a valid location."
	msgWeatherReport       = "The weather in %s is %s with a temperature of %s°C."
	msgWeatherRateLimited  = "API rate limit exceeded. Please try again later."
	msgWeatherNotFound     = "Location not found. Please check the location name."
	msgWeatherUnavailable  = "Sorry, I couldn't fetch the weather information."
	msgNewsHeader          = "Here are the top news headlines:"
	msgNewsUnavailable     = "Sorry, I couldn't fetch the news."
	msgSearchHeader        = "Here are the top search results:"
	msgSearchNoResults     = "Sorry, I couldn't find any relevant search results."
	msgSearchUnavailable   = "Sorry, I couldn't complete the search."
	msgSearchNoQuery       = "Please tell me what to search for."
	msgSearchQueryRequired = "No query provided!"

	msgPersonalAnswer     = "Your %s is %s."
	msgLearnFormat        = "Please provide input in 'key: value' format."
	msgLearned            = "I have learned: %s = %s"
	msgKeyRequired        = "Please provide a non-empty key."
	msgInfoUpdated        = "Personal information updated successfully!"
	msgStorageUnavailable = "Sorry, personal information is unavailable right now."
)
