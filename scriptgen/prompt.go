package scriptgen

import "fmt"

// defaultPrompt is the single template used regardless of the selected
// framework. It is Playwright specific.
const defaultPrompt = `
You are an expert Playwright test engineer.

From the provided Figma UI image, generate Python-based Playwright test automation code
in 3 clearly separated sections, each starting with markers:

` + MarkerLocators + `
- Define element locator classes or constants.

` + MarkerActions + `
- Define action classes that perform operations (click, type, verify, etc.) using locators.
- Use Playwright's sync API.

` + MarkerTest + `
- Write realistic Playwright test cases that call the above actions.
- Ensure code can run with pytest.
- Use a variable BASE_URL for the website URL instead of hardcoding it.

Use OOP design, meaningful class names, and clean formatting.
`

// BuildPrompt returns the instructional prompt sent with the image.
// Unless frameworkAware is set, every framework gets the Playwright template.
func BuildPrompt(framework Framework, frameworkAware bool) string {
	if !frameworkAware {
		return defaultPrompt
	}

	name := framework.DisplayName()
	return fmt.Sprintf(`
You are an expert %[1]s test engineer.

From the provided Figma UI image, generate Python-based %[1]s test automation code
in 3 clearly separated sections, each starting with markers:

%[2]s
- Define element locator classes or constants.

%[3]s
- Define action classes that perform operations (click, type, verify, etc.) using locators.

%[4]s
- Write realistic %[1]s test cases that call the above actions.
- Ensure code can run with pytest.
- Use a variable BASE_URL for the website URL instead of hardcoding it.

%[5]s

Use OOP design, meaningful class names, and clean formatting.
`, name, MarkerLocators, MarkerActions, MarkerTest, getFrameworkSpecificInstructions(framework))
}

func getFrameworkSpecificInstructions(framework Framework) string {
	if framework == FrameworkSelenium {
		return `For Selenium:
- Use selenium.webdriver for browser automation
- Use WebDriverWait and expected_conditions for element interactions
- Provide the driver through a pytest fixture that quits the browser afterwards
- Include proper imports: from selenium import webdriver, from selenium.webdriver.common.by import By, etc.`
	}

	return `For Playwright:
- Use playwright.sync_api for synchronous browser automation
- Accept the pytest-playwright "page" fixture in test functions
- Include proper imports: from playwright.sync_api import Page, expect`
}
