package services

import "fmt"

// Prompts holds the lines spoken to callers. They are in Hindi to match the
// hi-IN voice; the organization name is filled in from config.
type Prompts struct {
	Org   string
	About string
}

const defaultAbout = "एक सामाजिक संस्था है जो शिक्षा, स्वास्थ्य और महिला सशक्तिकरण के क्षेत्र में काम करती है।"

// NewPrompts creates prompts for org
func NewPrompts(org string) Prompts {
	if org == "" {
		org = "Sankalpiq Foundation"
	}
	return Prompts{Org: org, About: defaultAbout}
}

func (p Prompts) Greeting(flow Flow) string {
	if flow == FlowInfo {
		return fmt.Sprintf("नमस्ते! मैं %s से बात कर रही हूँ। कृपया अपना नाम बताइए।", p.Org)
	}
	return fmt.Sprintf("नमस्ते! मैं %s से Aditi बात कर रही हूँ। यह कॉल आपकी सहायता और मार्गदर्शन के लिए है। कृपया अपना नाम बताइए।", p.Org)
}

func (p Prompts) NameRetry() string {
	return "माफ कीजिए, हमें आपकी आवाज़ स्पष्ट रूप से सुनाई नहीं दी। एक बार फिर कोशिश करते हैं।"
}

func (p Prompts) NameNotFound() string {
	return "हमें आपका नाम नहीं मिला। कोई बात नहीं, हम बाद में फिर से प्रयास करेंगे।"
}

func (p Prompts) Intro(name string) string {
	return fmt.Sprintf("नमस्ते %s! %s %s आप हमारे कार्यों के बारे में क्या जानना चाहेंगे?", name, p.Org, p.About)
}

func (p Prompts) MoreQuestions() string {
	return fmt.Sprintf("क्या आप %s के किसी अन्य कार्यक्रम के बारे में जानना चाहते हैं? कृपया हाँ या ना कहें।", p.Org)
}

func (p Prompts) AskEmail(name string) string {
	return fmt.Sprintf("धन्यवाद %s। हमारी फाउंडेशन के साथ जुड़ने के लिए, कृपया अपना ईमेल पता बताइए।", name)
}

func (p Prompts) EmailMissing(name string) string {
	return fmt.Sprintf("%s, माफ कीजिए, ईमेल नहीं मिला।", name)
}

func (p Prompts) AskBlood(name string) string {
	return fmt.Sprintf("शुक्रिया %s! कृपया अपना blood group बताइए। यह जानकारी फाउंडेशन के पास सुरक्षित रहेगी।", name)
}

func (p Prompts) Saved(name string) string {
	return fmt.Sprintf("धन्यवाद %s, आपकी जानकारी %s में सुरक्षित कर ली गई है। हमारी टीम जल्द ही आपसे संपर्क करेगी।", name, p.Org)
}

func (p Prompts) SavedWithoutBlood(name string) string {
	return fmt.Sprintf("%s, रक्त समूह प्राप्त नहीं हुआ, फिर भी आपकी जानकारी हमारे पास सुरक्षित है।", name)
}

func (p Prompts) SaveFailed(name string) string {
	return fmt.Sprintf("%s, माफ कीजिए, अभी आपकी जानकारी सुरक्षित नहीं हो पाई। कृपया बाद में फिर से प्रयास करें।", name)
}

func (p Prompts) Goodbye() string {
	return fmt.Sprintf("%s की ओर से आपका समय देने के लिए धन्यवाद।", p.Org)
}

// Apology is spoken when a turn fails unexpectedly
func (p Prompts) Apology() string {
	return "Sorry, there was an error with the application."
}
